package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Windows Platform = "windows"
	Unknown Platform = "unknown"
)

// AppName is the directory name used under the user's config and cache dirs
const AppName = "sortify"

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	case "windows":
		return Windows
	default:
		return Unknown
	}
}

// GetUserCacheDir returns the user's cache directory
func GetUserCacheDir() (string, error) {
	if Detect() == Linux {
		// Try XDG_CACHE_HOME first
		if cacheDir := os.Getenv("XDG_CACHE_HOME"); cacheDir != "" {
			return cacheDir, nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, ".cache"), nil
	}
	return os.UserCacheDir()
}

// GetUserConfigDir returns the user's config directory
func GetUserConfigDir() (string, error) {
	switch Detect() {
	case Linux, MacOS:
		// XDG_CONFIG_HOME wins on macOS too; most CLI users expect ~/.config there
		if configDir := os.Getenv("XDG_CONFIG_HOME"); configDir != "" {
			return configDir, nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, ".config"), nil
	case Windows:
		return os.UserConfigDir()
	default:
		return "", ErrUnsupportedPlatform
	}
}

// ProtectedPaths lists directories sortify must never reorganise
func ProtectedPaths() []string {
	switch Detect() {
	case Windows:
		root := os.Getenv("SystemDrive")
		if root == "" {
			root = "C:"
		}
		root += `\`
		return []string{
			root,
			filepath.Join(root, "Windows"),
			filepath.Join(root, "Program Files"),
			filepath.Join(root, "Program Files (x86)"),
			filepath.Join(root, "ProgramData"),
		}
	default:
		return []string{
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib64",
			"/opt",
			"/proc",
			"/run",
			"/sbin",
			"/srv",
			"/sys",
			"/usr",
			"/var",
			"/System",       // macOS
			"/Applications", // macOS
			"/Library",      // macOS
			"/private",      // macOS
		}
	}
}

// Errors
var (
	ErrUnsupportedPlatform = &PlatformError{"unsupported platform"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}
