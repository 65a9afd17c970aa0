package filestore

import (
	"path"
	"strings"
)

// File kinds reported for listings and the stack.
const (
	KindImage    = "image"
	KindDocument = "document"
	KindOther    = "other"
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "svg": {}, "bmp": {},
}

var documentExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "odt": {}, "txt": {}, "md": {},
	"xls": {}, "xlsx": {}, "ods": {}, "ppt": {}, "pptx": {}, "csv": {},
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Kind classifies name by extension.
func Kind(name string) string {
	ext := Extension(name)
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	if _, ok := documentExtensions[ext]; ok {
		return KindDocument
	}
	return KindOther
}
