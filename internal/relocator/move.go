package relocator

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"
)

// errNoReplaceUnsupported means the platform or filesystem cannot rename
// with a no-replace guarantee
var errNoReplaceUnsupported = errors.New("no-replace rename unsupported")

// moveNoReplace moves src to dst. When dst already exists it fails with an
// error matching fs.ErrExist and leaves both files untouched.
func moveNoReplace(src, dst string) error {
	err := renameNoReplace(src, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return err
	case errors.Is(err, errNoReplaceUnsupported):
		return linkMove(src, dst)
	case errors.Is(err, syscall.EXDEV):
		return copyMove(src, dst)
	default:
		return err
	}
}

// linkMove claims dst with a hard link, which fails if dst exists, then
// drops the old name
func linkMove(src, dst string) error {
	if err := os.Link(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		if sourceGone(src) {
			return err
		}
		// Different device, or a filesystem without hard links
		return copyMove(src, dst)
	}

	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

// copyMove copies into a freshly created dst (O_EXCL) and removes src
func copyMove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	// Windows refuses to remove an open file
	in.Close()
	return os.Remove(src)
}
