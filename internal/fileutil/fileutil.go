package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// CopyFileExclusive streams src to dst, failing with an error matching
// os.ErrExist when dst already exists. The existence check and the creation
// are a single atomic step, so concurrent callers never overwrite each other.
// The copy keeps the source's permission bits.
func CopyFileExclusive(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: source is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			if !errors.Is(err, os.ErrExist) {
				_ = os.Remove(dst)
			}
		}
	}()

	written, err := io.Copy(out, in)
	if err != nil {
		return err
	}
	if written != info.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	return out.Close()
}
