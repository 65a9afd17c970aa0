// Package stack keeps each user's short list of recently used files.
package stack

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"backoffice/internal/config"
	"backoffice/internal/filestore"
	"backoffice/internal/logging"
)

// MaxItems bounds the number of files kept per user.
const MaxItems = 10

// Item is a stacked file.
type Item struct {
	Type     string
	Basename string
	Path     string
}

// Persistence stores stacks; store.Store satisfies it.
type Persistence interface {
	StackItems(ctx context.Context, userID int64) ([]string, error)
	SaveStack(ctx context.Context, userID int64, paths []string) error
}

// Stack manages per-user stacks backed by Persistence.
type Stack struct {
	store     Persistence
	files     *filestore.Manager
	fileTypes []string
	accepted  map[string]struct{}
	logger    *slog.Logger

	mu sync.Mutex
}

// New constructs a Stack.
func New(cfg *config.Config, store Persistence, files *filestore.Manager, logger *slog.Logger) *Stack {
	accepted := make(map[string]struct{}, len(cfg.Filesystem.AcceptFileTypes))
	for _, ext := range cfg.Filesystem.AcceptFileTypes {
		accepted[ext] = struct{}{}
	}
	types := make([]string, len(cfg.Filesystem.AcceptFileTypes))
	copy(types, cfg.Filesystem.AcceptFileTypes)
	return &Stack{
		store:     store,
		files:     files,
		fileTypes: types,
		accepted:  accepted,
		logger:    logging.NewComponentLogger(logger, "stack"),
	}
}

// FileTypes returns the extensions that may be stacked.
func (s *Stack) FileTypes() []string {
	out := make([]string, len(s.fileTypes))
	copy(out, s.fileTypes)
	return out
}

// Add puts filename on top of the user's stack. It reports false when the
// file has an unaccepted extension or does not exist in the upload
// namespace. A file already on the stack moves to the top.
func (s *Stack) Add(ctx context.Context, userID int64, filename string) (bool, error) {
	uri := filestore.ParseURI(filename, s.files.UploadNamespace())
	if uri.Path == "" || uri.Namespace != s.files.UploadNamespace() {
		return false, nil
	}
	if _, ok := s.accepted[filestore.Extension(uri.Path)]; !ok {
		s.logger.Debug("stack rejected extension", logging.String("path", uri.Path))
		return false, nil
	}
	uploads, err := s.files.Uploads()
	if err != nil {
		return false, err
	}
	if entry, err := uploads.Stat(uri.Path); err != nil || entry.Dir {
		s.logger.Debug("stack rejected missing file", logging.String("path", uri.Path))
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.StackItems(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load stack: %w", err)
	}
	key := uri.String()
	next := make([]string, 0, MaxItems)
	next = append(next, key)
	for _, p := range current {
		if p == key {
			continue
		}
		if len(next) == MaxItems {
			break
		}
		next = append(next, p)
	}
	if err := s.store.SaveStack(ctx, userID, next); err != nil {
		return false, fmt.Errorf("save stack: %w", err)
	}
	return true, nil
}

// List returns up to count items, newest first. A count <= 0 returns all.
func (s *Stack) List(ctx context.Context, userID int64, count int) ([]Item, error) {
	paths, err := s.store.StackItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load stack: %w", err)
	}
	if count > 0 && len(paths) > count {
		paths = paths[:count]
	}
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		uri := filestore.ParseURI(p, s.files.UploadNamespace())
		items = append(items, Item{
			Type:     filestore.Kind(uri.Path),
			Basename: path.Base(uri.Path),
			Path:     uri.String(),
		})
	}
	return items, nil
}
