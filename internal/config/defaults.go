package config

// Category folder names used by the built-in table
const (
	CategoryVideo       = "Video"
	CategoryAudio       = "Audio"
	CategoryPictures    = "Pictures"
	CategoryDocuments   = "Documents"
	CategoryArchives    = "Archives"
	CategoryExecutables = "Executables"
	CategoryCode        = "Code"

	DefaultFallbackCategory = "Uncategorized"
	DefaultManualCategory   = "Check manually"
)

// GetDefault returns the default configuration. The built-in extension
// table is not stored in Categories; Table merges it in unless
// ReplaceDefaults is set.
func GetDefault() *Config {
	return &Config{
		FallbackCategory: DefaultFallbackCategory,
		ExcludePatterns: []string{
			"*.part",
			"*.crdownload",
			"*.tmp",
		},
		Detection: DetectionConfig{
			Enabled:        true,
			OnMismatch:     "manual",
			Binaries:       "process",
			ManualCategory: DefaultManualCategory,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultCategories returns the built-in category to extensions table
func DefaultCategories() map[string][]string {
	return map[string][]string{
		CategoryVideo: {
			"mp4", "m4v", "mov", "mkv", "avi", "webm", "flv", "wmv",
			"mpg", "mpeg", "3gp", "ogv", "ts", "vob",
		},
		CategoryAudio: {
			"mp3", "wav", "flac", "ogg", "m4a", "m4b", "aac", "opus",
			"wma", "ape", "alac", "aiff", "dsf", "dsd",
		},
		CategoryPictures: {
			"png", "jpg", "jpeg", "gif", "bmp", "webp", "tiff", "tif",
			"svg", "ico", "heic", "heif", "raw", "cr2", "nef",
			"arw", "dng", "psd", "ai", "eps",
		},
		CategoryDocuments: {
			"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
			"txt", "md", "rtf", "odt", "ods", "odp",
			"csv", "epub", "mobi", "djvu",
		},
		CategoryArchives: {
			"zip", "7z", "rar", "gz", "tar", "tgz", "bz2",
			"xz", "zst", "lz4", "cab", "iso", "dmg",
		},
		CategoryExecutables: {
			"exe", "msi", "elf", "app", "mach-o", "wasm",
			"dll", "so", "dylib", "bin", "apk", "jar",
		},
		CategoryCode: {
			"rs", "py", "js", "jsx", "tsx", "c", "cpp", "h", "hpp",
			"java", "go", "rb", "php", "swift", "kt", "cs", "html", "css",
			"scss", "sass", "less", "vue", "svelte", "sh", "bash", "zsh",
			"fish", "ps1", "bat", "cmd", "yaml", "yml", "json", "toml",
			"xml", "ini", "conf", "config", "env", "gitignore",
			"dockerfile", "makefile", "cmake", "sql",
		},
	}
}
