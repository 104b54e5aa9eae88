// Package testutil provides test helpers and fixtures for sortify tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

// Sample file headers for content detection tests
var (
	PNGHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	JPEGHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	PDFHeader  = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	ELFHeader  = []byte{0x7F, 'E', 'L', 'F', 0x02, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
)

// TestFixture is a scratch directory to sort
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)
}

// NewFixture creates a new empty fixture directory
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()
	// Passes report canonical paths; macOS TempDir lives behind /var -> /private/var
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &TestFixture{T: t, RootDir: root}
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFiles creates each named file with its own name as content
func (f *TestFixture) CreateFiles(relPaths ...string) []string {
	f.T.Helper()

	paths := make([]string, 0, len(relPaths))
	for _, rel := range relPaths {
		paths = append(paths, f.CreateFile(rel, []byte("content of "+rel)))
	}
	return paths
}

// CreateFileWithHeader writes header followed by filler bytes
func (f *TestFixture) CreateFileWithHeader(relPath string, header []byte) string {
	f.T.Helper()
	content := append(append([]byte{}, header...), bytes.Repeat([]byte{0}, 32)...)
	return f.CreateFile(relPath, content)
}

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}
	return fullPath
}

// CreateSymlink creates a symbolic link at linkPath pointing to target
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := filepath.Join(f.RootDir, linkPath)
	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Fatalf("failed to create symlink %s -> %s: %v", fullLinkPath, target, err)
	}
	return fullLinkPath
}

// MakeReadOnlyDir removes write permission from a directory and restores it
// on cleanup so t.TempDir can remove it
func (f *TestFixture) MakeReadOnlyDir(relPath string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.Chmod(fullPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", fullPath, err)
	}
	f.T.Cleanup(func() {
		os.Chmod(fullPath, 0755)
	})
	return fullPath
}

// SkipIfRoot skips tests that rely on permission checks
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the absolute path for a fixture-relative path
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// ReadFile returns the content of a fixture-relative file
func (f *TestFixture) ReadFile(relPath string) []byte {
	f.T.Helper()

	data, err := os.ReadFile(f.Path(relPath))
	if err != nil {
		f.T.Fatalf("failed to read %s: %v", relPath, err)
	}
	return data
}

// Files lists the regular files directly inside a fixture-relative
// directory, sorted by name
func (f *TestFixture) Files(relDir string) []string {
	f.T.Helper()

	entries, err := os.ReadDir(f.Path(relDir))
	if err != nil {
		f.T.Fatalf("failed to read directory %s: %v", relDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Assertions
// =============================================================================

// FileExists reports whether a fixture-relative path exists
func (f *TestFixture) FileExists(relPath string) bool {
	_, err := os.Lstat(f.Path(relPath))
	return err == nil
}

// AssertFileExists fails the test if relPath is missing
func (f *TestFixture) AssertFileExists(relPath string) {
	f.T.Helper()
	if !f.FileExists(relPath) {
		f.T.Errorf("expected %s to exist", relPath)
	}
}

// AssertFileNotExists fails the test if relPath exists
func (f *TestFixture) AssertFileNotExists(relPath string) {
	f.T.Helper()
	if f.FileExists(relPath) {
		f.T.Errorf("expected %s to not exist", relPath)
	}
}

// AssertFileContent fails the test if relPath does not hold want
func (f *TestFixture) AssertFileContent(relPath string, want []byte) {
	f.T.Helper()
	if got := f.ReadFile(relPath); !bytes.Equal(got, want) {
		f.T.Errorf("%s: content = %q, want %q", relPath, got, want)
	}
}
