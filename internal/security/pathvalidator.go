package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sortify-app/sortify/internal/platform"
)

// PathValidator decides whether a directory is safe to reorganise
type PathValidator struct {
	protectedPaths []string
	homeDir        string
	allowHome      bool
}

// NewPathValidator creates a new PathValidator with the platform's protected paths
func NewPathValidator() *PathValidator {
	homeDir, _ := os.UserHomeDir()
	return &PathValidator{
		protectedPaths: platform.ProtectedPaths(),
		homeDir:        filepath.Clean(homeDir),
	}
}

// AllowHome permits sorting the root of the user's home directory
func (pv *PathValidator) AllowHome(allow bool) {
	pv.allowHome = allow
}

// ValidateTarget checks a directory before a pass moves anything inside it.
// The path is resolved through symlinks so /tmp/link-to-etc is rejected like /etc.
func (pv *PathValidator) ValidateTarget(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	resolvedPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Let the scanner report a missing directory
			resolvedPath = path
		} else {
			return fmt.Errorf("failed to resolve symlinks: %w", err)
		}
	}
	cleanPath := filepath.Clean(resolvedPath)

	if err := pv.checkProtectedPaths(cleanPath); err != nil {
		return err
	}

	if !pv.allowHome && pv.homeDir != "" && pv.homeDir != "." && cleanPath == pv.homeDir {
		return fmt.Errorf("refusing to sort home directory %s (set allow_home to override)", cleanPath)
	}

	return nil
}

// checkProtectedPaths validates that a path is not a protected system directory
// or a direct child of one
func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	sep := string(filepath.Separator)
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return fmt.Errorf("refusing to sort protected path: %s", cleanPath)
		}

		// Filesystem roots only protect themselves
		if strings.HasSuffix(protected, sep) {
			continue
		}
		if strings.HasPrefix(cleanPath, protected+sep) {
			rel, _ := filepath.Rel(protected, cleanPath)
			if !strings.Contains(rel, sep) {
				return fmt.Errorf("refusing to sort system path: %s", cleanPath)
			}
		}
	}

	return nil
}

// IsProtectedPath checks if a path is a protected system path
func (pv *PathValidator) IsProtectedPath(path string) bool {
	return pv.checkProtectedPaths(filepath.Clean(path)) != nil
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	pv.protectedPaths = append(pv.protectedPaths, filepath.Clean(path))
}

// ValidateGlobPattern validates that an exclude pattern is a usable glob
func ValidateGlobPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("glob pattern is empty")
	}
	// Patterns match bare file names, never paths
	if strings.ContainsAny(pattern, `/\`) {
		return fmt.Errorf("glob pattern must match a file name, not a path: %s", pattern)
	}

	if _, err := filepath.Match(pattern, "test"); err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}

	return nil
}
