package security

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testValidator(home string) *PathValidator {
	if resolved, err := filepath.EvalSymlinks(home); err == nil {
		home = resolved
	}
	return &PathValidator{
		protectedPaths: []string{"/", "/etc", "/usr", "/var"},
		homeDir:        home,
	}
}

func TestValidateTarget(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("macOS resolves /etc and /var into /private")
	}

	pv := testValidator(t.TempDir())
	home := pv.homeDir

	tests := []struct {
		name        string
		path        string
		shouldError bool
		errorMsg    string
	}{
		{name: "relative path", path: "Downloads", shouldError: true, errorMsg: "path must be absolute"},
		{name: "filesystem root", path: "/", shouldError: true, errorMsg: "protected path"},
		{name: "protected path", path: "/etc", shouldError: true, errorMsg: "protected path"},
		{name: "protected with trailing slash", path: "/usr/", shouldError: true, errorMsg: "protected path"},
		{name: "direct child of protected", path: "/var/log", shouldError: true, errorMsg: "system path"},
		{name: "deep inside protected", path: "/var/lib/app/inbox", shouldError: false},
		{name: "home directory root", path: home, shouldError: true, errorMsg: "home directory"},
		{name: "inside home", path: filepath.Join(home, "Downloads"), shouldError: false},
		{name: "missing directory", path: filepath.Join(home, "missing"), shouldError: false},
		{name: "prefix is not a parent", path: "/etcetera", shouldError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidateTarget(tt.path)

			if tt.shouldError {
				if err == nil {
					t.Errorf("ValidateTarget(%s) should have failed", tt.path)
					return
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("ValidateTarget(%s) error = %v, should contain %q", tt.path, err, tt.errorMsg)
				}
			} else if err != nil {
				t.Errorf("ValidateTarget(%s) unexpected error: %v", tt.path, err)
			}
		})
	}
}

func TestValidateTargetAllowHome(t *testing.T) {
	pv := testValidator(t.TempDir())
	home := pv.homeDir

	if err := pv.ValidateTarget(home); err == nil {
		t.Fatal("home should be refused by default")
	}

	pv.AllowHome(true)
	if err := pv.ValidateTarget(home); err != nil {
		t.Errorf("home should be allowed: %v", err)
	}
}

func TestValidateTargetResolvesSymlinks(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("macOS resolves /etc into /private")
	}

	dir := t.TempDir()
	link := filepath.Join(dir, "etc-link")
	if err := os.Symlink("/etc", link); err != nil {
		t.Fatal(err)
	}

	pv := testValidator("")
	if err := pv.ValidateTarget(link); err == nil {
		t.Error("a symlink to a protected path should be refused")
	}
}

func TestIsProtectedPath(t *testing.T) {
	pv := testValidator("")

	if !pv.IsProtectedPath("/etc") {
		t.Error("/etc should be protected")
	}
	if !pv.IsProtectedPath("/etc/ssh") {
		t.Error("/etc/ssh should be protected")
	}
	if pv.IsProtectedPath("/home/user/Downloads") {
		t.Error("/home/user/Downloads should not be protected")
	}

	pv.AddProtectedPath("/home/user/Vault/")
	if !pv.IsProtectedPath("/home/user/Vault") {
		t.Error("custom protected path should be honoured")
	}
}

func TestNewPathValidatorProtectsSystemDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	pv := NewPathValidator()
	for _, p := range []string{"/", "/etc", "/usr", "/bin"} {
		if !pv.IsProtectedPath(p) {
			t.Errorf("%s should be protected", p)
		}
	}
}

func TestValidateGlobPattern(t *testing.T) {
	tests := []struct {
		pattern string
		valid   bool
	}{
		{"*.part", true},
		{"~$*", true},
		{"[abc]*.tmp", true},
		{"", false},
		{"   ", false},
		{"downloads/*.tmp", false},
		{`dir\*.tmp`, false},
		{"[unclosed", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			err := ValidateGlobPattern(tt.pattern)
			if tt.valid && err != nil {
				t.Errorf("ValidateGlobPattern(%q) unexpected error: %v", tt.pattern, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("ValidateGlobPattern(%q) should have failed", tt.pattern)
			}
		})
	}
}
