// Package textutil provides text helpers for slugs and file names.
//
// Slugify folds titles into URL-safe slugs using Unicode decomposition so
// accented letters keep their base form. SanitizeFileName and IsSafeFileName
// guard names supplied for filesystem operations.
package textutil
