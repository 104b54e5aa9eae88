package scanner

import (
	"strings"
	"time"
)

// FileEntry is one regular file found directly inside the scanned directory
type FileEntry struct {
	Name      string    `json:"name" yaml:"name"`
	Path      string    `json:"path" yaml:"path"`
	Extension string    `json:"extension" yaml:"extension"` // lower-case, no leading dot, "" if none
	Size      int64     `json:"size" yaml:"size"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
}

// ExtensionOf returns the lower-cased text after the last dot in name.
// Names without a dot, dotfiles like ".bashrc" and names ending in a dot
// have no extension.
func ExtensionOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// StemOf returns name without its extension
func StemOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name
	}
	return name[:i]
}
