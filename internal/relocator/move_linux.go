//go:build linux

package relocator

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func renameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EINVAL), errors.Is(err, unix.ENOSYS), errors.Is(err, unix.ENOTSUP):
		// Old kernels and some filesystems (NFS, FUSE) reject the flag
		return errNoReplaceUnsupported
	}
	return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
}
