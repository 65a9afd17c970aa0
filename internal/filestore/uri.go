package filestore

import (
	"path"
	"strings"
)

const uriSeparator = "://"

// URI names a path inside a namespace, written as "namespace://path".
type URI struct {
	Namespace string
	Path      string
}

// ParseURI splits raw into namespace and path. A value without a scheme is
// taken as a path in fallback. The path is cleaned and never starts with a
// slash.
func ParseURI(raw, fallback string) URI {
	raw = strings.TrimSpace(raw)
	ns := fallback
	if idx := strings.Index(raw, uriSeparator); idx >= 0 {
		ns = raw[:idx]
		raw = raw[idx+len(uriSeparator):]
	}
	return URI{Namespace: strings.ToLower(strings.TrimSpace(ns)), Path: CleanPath(raw)}
}

func (u URI) String() string {
	return u.Namespace + uriSeparator + u.Path
}

// CleanPath normalizes a slash separated path relative to a namespace root.
// Parent references cannot climb above the root.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/")
}

// JoinPath joins elements into a cleaned relative path.
func JoinPath(elem ...string) string {
	return CleanPath(path.Join(elem...))
}
