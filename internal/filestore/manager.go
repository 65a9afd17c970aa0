package filestore

import (
	"fmt"
	"sort"

	"backoffice/internal/config"
	"backoffice/internal/services"
)

// MaxSearchResults caps the autocomplete result list.
const MaxSearchResults = 100

// Manager holds the configured namespaces.
type Manager struct {
	namespaces map[string]*Filesystem
	upload     string
}

// NewManager builds a Manager from the filesystem section of cfg.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{
		namespaces: make(map[string]*Filesystem, len(cfg.Filesystem.Namespaces)),
		upload:     cfg.Filesystem.UploadNamespace,
	}
	for name, root := range cfg.Filesystem.Namespaces {
		m.namespaces[name] = &Filesystem{name: name, root: root}
	}
	return m
}

// Namespaces returns the namespace names in lexical order.
func (m *Manager) Namespaces() []string {
	names := make([]string, 0, len(m.namespaces))
	for name := range m.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filesystem returns the namespace called name.
func (m *Manager) Filesystem(name string) (*Filesystem, error) {
	fs, ok := m.namespaces[name]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "filestore", "namespace", fmt.Sprintf("unknown namespace %q", name), nil)
	}
	return fs, nil
}

// UploadNamespace returns the namespace receiving uploads.
func (m *Manager) UploadNamespace() string {
	return m.upload
}

// Uploads returns the upload namespace.
func (m *Manager) Uploads() (*Filesystem, error) {
	return m.Filesystem(m.upload)
}

// Rename moves from inside its namespace to the path to.
func (m *Manager) Rename(from URI, to string) error {
	fs, err := m.Filesystem(from.Namespace)
	if err != nil {
		return err
	}
	return fs.Rename(from.Path, to)
}

// Delete removes the file named by uri.
func (m *Manager) Delete(uri URI) error {
	fs, err := m.Filesystem(uri.Namespace)
	if err != nil {
		return err
	}
	return fs.Delete(uri.Path)
}

// DeleteDir removes the folder named by uri.
func (m *Manager) DeleteDir(uri URI) error {
	fs, err := m.Filesystem(uri.Namespace)
	if err != nil {
		return err
	}
	return fs.DeleteDir(uri.Path)
}

// CreateDir creates the folder named by uri.
func (m *Manager) CreateDir(uri URI) error {
	fs, err := m.Filesystem(uri.Namespace)
	if err != nil {
		return err
	}
	return fs.CreateDir(uri.Path)
}

// Duplicate copies the file named by uri and returns the URI of the copy.
func (m *Manager) Duplicate(uri URI) (URI, error) {
	fs, err := m.Filesystem(uri.Namespace)
	if err != nil {
		return URI{}, err
	}
	copied, err := fs.Duplicate(uri.Path)
	if err != nil {
		return URI{}, err
	}
	return URI{Namespace: uri.Namespace, Path: copied}, nil
}

// Search looks for files in the upload namespace.
func (m *Manager) Search(term string, exts []string) ([]string, error) {
	fs, err := m.Uploads()
	if err != nil {
		return nil, err
	}
	return fs.Search(term, exts, MaxSearchResults)
}
