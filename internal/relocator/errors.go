package relocator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"syscall"
)

// ErrFolderOccupied means a file, not a directory, holds the category folder name
var ErrFolderOccupied = errors.New("a file holds the category folder name")

// ErrorReason categorizes why a relocation failed
type ErrorReason int

const (
	ErrorNone ErrorReason = iota
	ErrorDirectoryNotFound
	ErrorPermissionDenied
	ErrorSourceVanished
	ErrorIO
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorNone:
		return "None"
	case ErrorDirectoryNotFound:
		return "Directory not found"
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorSourceVanished:
		return "Source vanished"
	case ErrorIO:
		return "I/O error"
	default:
		return "Unspecified error"
	}
}

// MarshalText renders the reason in reports
func (e ErrorReason) MarshalText() ([]byte, error) {
	if e == ErrorNone {
		return []byte(""), nil
	}
	return []byte(e.String()), nil
}

// MoveError represents a detailed relocation error
type MoveError struct {
	Path     string
	Reason   ErrorReason
	Original error
}

// Error implements the error interface
func (e *MoveError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

// Unwrap returns the underlying error
func (e *MoveError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *MoveError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("Permission denied: %s", e.Path)
	case ErrorSourceVanished:
		return fmt.Sprintf("Removed before it could be moved: %s", e.Path)
	case ErrorDirectoryNotFound:
		return fmt.Sprintf("Directory not found: %s", e.Path)
	default:
		return fmt.Sprintf("Error moving %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized MoveError
func CategorizeError(path string, err error) *MoveError {
	if err == nil {
		return nil
	}

	moveErr := &MoveError{
		Path:     path,
		Original: err,
		Reason:   ErrorIO,
	}

	var already *MoveError
	if errors.As(err, &already) {
		moveErr.Reason = already.Reason
		return moveErr
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		moveErr.Reason = ErrorSourceVanished
	case errors.Is(err, fs.ErrPermission):
		moveErr.Reason = ErrorPermissionDenied
	}
	if moveErr.Reason != ErrorIO {
		return moveErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM, syscall.EROFS:
			moveErr.Reason = ErrorPermissionDenied
		case syscall.ENOENT:
			moveErr.Reason = ErrorSourceVanished
		}
	}

	return moveErr
}

// sourceGone reports whether the file at path no longer exists
func sourceGone(path string) bool {
	_, err := os.Lstat(path)
	return errors.Is(err, fs.ErrNotExist)
}

// GroupErrors groups relocation errors by reason
func GroupErrors(errs []*MoveError) map[ErrorReason][]*MoveError {
	grouped := make(map[ErrorReason][]*MoveError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errs []*MoveError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	reasons := make([]ErrorReason, 0, len(grouped))
	for reason := range grouped {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	var b strings.Builder
	b.WriteString("Issues encountered:\n")
	for i, reason := range reasons {
		branch := "├─"
		if i == len(reasons)-1 {
			branch = "└─"
		}
		fmt.Fprintf(&b, "   %s %s: %d files\n", branch, reason, len(grouped[reason]))
		switch reason {
		case ErrorPermissionDenied:
			b.WriteString("   │  └─ Tip: check write access to the category folders\n")
		case ErrorSourceVanished:
			b.WriteString("   │  └─ Tip: another program moved or deleted these files during the pass\n")
		}
	}

	return b.String()
}
