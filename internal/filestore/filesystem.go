package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/fileutil"
	"backoffice/internal/services"
	"backoffice/internal/textutil"
)

const (
	copySuffix        = "_copy"
	maxDuplicateTries = 1000
)

// ErrOutsideRoot is returned for paths that resolve outside the namespace.
var ErrOutsideRoot = errors.New("path escapes namespace root")

// Entry is a file or folder inside a namespace.
type Entry struct {
	Name    string
	Path    string
	Dir     bool
	Size    int64
	ModTime time.Time
}

// Kind classifies the entry; folders report KindOther.
func (e Entry) Kind() string {
	if e.Dir {
		return KindOther
	}
	return Kind(e.Name)
}

// Filesystem is a single namespace rooted at a directory.
type Filesystem struct {
	name string
	root string
}

// Name returns the namespace name.
func (f *Filesystem) Name() string { return f.name }

// Resolve maps a namespace-relative path onto the host filesystem. Symlinks
// inside the namespace that point outside it are rejected, for new targets
// too: those are checked through their nearest existing parent.
func (f *Filesystem) Resolve(rel string) (string, error) {
	full := filepath.Join(f.root, filepath.FromSlash(CleanPath(rel)))
	if !within(f.root, full) {
		return "", ErrOutsideRoot
	}
	if err := Confined(f.root, full); err != nil {
		return "", err
	}
	return full, nil
}

// Confined reports ErrOutsideRoot when target, after following symlinks,
// lies outside root. A target that does not exist yet is judged by its
// nearest existing ancestor.
func Confined(root, target string) error {
	realRoot, err := filepath.EvalSymlinks(root)
	if errors.Is(err, fs.ErrNotExist) {
		// Nothing below a missing root can be a link.
		return nil
	}
	if err != nil {
		return err
	}
	existing := target
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			if !within(realRoot, resolved) {
				return ErrOutsideRoot
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(existing)
		if parent == existing || !within(root, parent) {
			return ErrOutsideRoot
		}
		existing = parent
	}
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Has reports whether rel exists.
func (f *Filesystem) Has(rel string) bool {
	full, err := f.Resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// Stat returns the entry at rel.
func (f *Filesystem) Stat(rel string) (Entry, error) {
	full, err := f.Resolve(rel)
	if err != nil {
		return Entry{}, f.wrap(services.ErrForbidden, "stat", rel, err)
	}
	info, err := os.Stat(full)
	if err != nil {
		return Entry{}, f.wrap(services.ErrNotFound, "stat", rel, err)
	}
	return entryFromInfo(CleanPath(rel), info), nil
}

// Rename moves from to to inside the namespace. The target must not exist and
// its basename must be a safe file name.
func (f *Filesystem) Rename(from, to string) error {
	if !textutil.IsSafeFileName(path.Base(CleanPath(to))) {
		return f.wrap(services.ErrValidation, "rename", to, errors.New("unsafe target name"))
	}
	src, err := f.existing("rename", from)
	if err != nil {
		return err
	}
	dst, err := f.Resolve(to)
	if err != nil {
		return f.wrap(services.ErrForbidden, "rename", to, err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return f.wrap(services.ErrConflict, "rename", to, fs.ErrExist)
	}
	if err := os.Rename(src, dst); err != nil {
		return f.wrap(services.ErrTransient, "rename", from, err)
	}
	return nil
}

// Delete removes the file at rel.
func (f *Filesystem) Delete(rel string) error {
	full, err := f.existing("delete", rel)
	if err != nil {
		return err
	}
	info, err := os.Stat(full)
	if err != nil {
		return f.wrap(services.ErrNotFound, "delete", rel, err)
	}
	if info.IsDir() {
		return f.wrap(services.ErrValidation, "delete", rel, errors.New("is a directory"))
	}
	if err := os.Remove(full); err != nil {
		return f.wrap(services.ErrTransient, "delete", rel, err)
	}
	return nil
}

// DeleteDir removes the folder at rel with everything below it. The namespace
// root itself cannot be removed.
func (f *Filesystem) DeleteDir(rel string) error {
	if CleanPath(rel) == "" {
		return f.wrap(services.ErrForbidden, "delete dir", rel, errors.New("refusing to remove namespace root"))
	}
	full, err := f.existing("delete dir", rel)
	if err != nil {
		return err
	}
	info, err := os.Stat(full)
	if err != nil {
		return f.wrap(services.ErrNotFound, "delete dir", rel, err)
	}
	if !info.IsDir() {
		return f.wrap(services.ErrValidation, "delete dir", rel, errors.New("not a directory"))
	}
	if err := os.RemoveAll(full); err != nil {
		return f.wrap(services.ErrTransient, "delete dir", rel, err)
	}
	return nil
}

// CreateDir creates the folder rel. Its parent must exist.
func (f *Filesystem) CreateDir(rel string) error {
	rel = CleanPath(rel)
	if !textutil.IsSafeFileName(path.Base(rel)) {
		return f.wrap(services.ErrValidation, "create dir", rel, errors.New("unsafe folder name"))
	}
	full, err := f.Resolve(rel)
	if err != nil {
		return f.wrap(services.ErrForbidden, "create dir", rel, err)
	}
	if err := os.Mkdir(full, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return f.wrap(services.ErrConflict, "create dir", rel, err)
		}
		return f.wrap(services.ErrTransient, "create dir", rel, err)
	}
	return nil
}

// Duplicate copies rel next to itself as NAME_copy.EXT, then NAME_copy2.EXT
// and so on. It returns the relative path of the new file.
func (f *Filesystem) Duplicate(rel string) (string, error) {
	rel = CleanPath(rel)
	src, err := f.existing("duplicate", rel)
	if err != nil {
		return "", err
	}
	dir, base := path.Split(rel)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for attempt := 1; attempt <= maxDuplicateTries; attempt++ {
		suffix := copySuffix
		if attempt > 1 {
			suffix += strconv.Itoa(attempt)
		}
		candidate := JoinPath(dir, stem+suffix+ext)
		dst, err := f.Resolve(candidate)
		if err != nil {
			return "", f.wrap(services.ErrForbidden, "duplicate", candidate, err)
		}
		err = fileutil.CopyFileExclusive(src, dst)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", f.wrap(services.ErrTransient, "duplicate", rel, err)
		}
	}
	return "", f.wrap(services.ErrConflict, "duplicate", rel, fmt.Errorf("no free name after %d attempts", maxDuplicateTries))
}

// ListContents returns every entry directly below rel, in name order.
func (f *Filesystem) ListContents(rel string) ([]Entry, error) {
	rel = CleanPath(rel)
	full, err := f.Resolve(rel)
	if err != nil {
		return nil, f.wrap(services.ErrForbidden, "list", rel, err)
	}
	dirEntries, err := os.ReadDir(full)
	if err != nil {
		return nil, f.wrap(services.ErrNotFound, "list", rel, err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		// Follow symlinks so linked folders list as folders.
		if de.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(full, de.Name())); err == nil {
				info = target
			}
		}
		entries = append(entries, entryFromInfo(JoinPath(rel, de.Name()), info))
	}
	return entries, nil
}

// Browse lists rel split into folders and files. Hidden entries are skipped.
func (f *Filesystem) Browse(rel string) (folders, files []Entry, err error) {
	entries, err := f.ListContents(rel)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		if e.Dir {
			folders = append(folders, e)
		} else {
			files = append(files, e)
		}
	}
	sortEntries(folders)
	sortEntries(files)
	return folders, files, nil
}

// Search walks the namespace for files whose basename contains term
// (case-insensitive) and whose extension is in exts when exts is non-empty.
// Results are relative paths in lexical order, at most limit of them.
func (f *Filesystem) Search(term string, exts []string, limit int) ([]string, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		if ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")); ext != "" {
			allowed[ext] = struct{}{}
		}
	}

	var matches []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if p != f.root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if len(allowed) > 0 {
			if _, ok := allowed[Extension(name)]; !ok {
				return nil
			}
		}
		if term != "" && !strings.Contains(strings.ToLower(name), term) {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return nil
		}
		matches = append(matches, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, f.wrap(services.ErrTransient, "search", term, err)
	}
	sort.Strings(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (f *Filesystem) existing(operation, rel string) (string, error) {
	full, err := f.Resolve(rel)
	if err != nil {
		return "", f.wrap(services.ErrForbidden, operation, rel, err)
	}
	if _, err := os.Lstat(full); err != nil {
		return "", f.wrap(services.ErrNotFound, operation, rel, err)
	}
	return full, nil
}

func (f *Filesystem) wrap(marker error, operation, rel string, err error) error {
	return services.Wrap(marker, "filestore", operation, f.name+uriSeparator+CleanPath(rel), err)
}

func entryFromInfo(rel string, info fs.FileInfo) Entry {
	e := Entry{
		Name:    info.Name(),
		Path:    rel,
		Dir:     info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !e.Dir {
		e.Size = info.Size()
	}
	return e
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}
