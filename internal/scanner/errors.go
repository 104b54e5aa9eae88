package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryNotFound is returned when the target does not exist or is not a directory
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrPermissionDenied is returned when the target cannot be listed
	ErrPermissionDenied = errors.New("permission denied")
)

// ScanError describes why a directory could not be scanned
type ScanError struct {
	Dir    string
	Reason error
	Err    error
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("scan %s: %v", e.Dir, e.Reason)
	}
	return fmt.Sprintf("scan %s: %v: %v", e.Dir, e.Reason, e.Err)
}

// Is reports whether target is the sentinel reason of this error
func (e *ScanError) Is(target error) bool {
	return target == e.Reason
}

// Unwrap returns the underlying filesystem error
func (e *ScanError) Unwrap() error {
	return e.Err
}
