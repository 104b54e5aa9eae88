package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sortify-app/sortify/internal/detect"
)

// =============================================================================
// GetDefault Tests
// =============================================================================

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()

	if cfg == nil {
		t.Fatal("GetDefault returned nil")
	}
	if cfg.FallbackCategory != DefaultFallbackCategory {
		t.Errorf("expected fallback %q, got %q", DefaultFallbackCategory, cfg.FallbackCategory)
	}
	if !cfg.Detection.Enabled {
		t.Error("expected detection to be enabled by default")
	}
	if cfg.Detection.ManualCategory != DefaultManualCategory {
		t.Errorf("expected manual category %q, got %q", DefaultManualCategory, cfg.Detection.ManualCategory)
	}
	if cfg.DryRun {
		t.Error("expected dry run to be off by default")
	}
	if len(cfg.Categories) != 0 {
		t.Error("expected the built-in table to stay out of Categories")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestGetDefaultExcludePatterns(t *testing.T) {
	cfg := GetDefault()

	want := map[string]bool{"*.part": true, "*.crdownload": true, "*.tmp": true}
	if len(cfg.ExcludePatterns) != len(want) {
		t.Fatalf("expected %d exclude patterns, got %v", len(want), cfg.ExcludePatterns)
	}
	for _, p := range cfg.ExcludePatterns {
		if !want[p] {
			t.Errorf("unexpected exclude pattern %q", p)
		}
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := GetDefault().Table()
	if err != nil {
		t.Fatalf("default table: %v", err)
	}

	tests := map[string]string{
		"jpg":  CategoryPictures,
		"JPEG": CategoryPictures,
		"mp4":  CategoryVideo,
		"flac": CategoryAudio,
		"pdf":  CategoryDocuments,
		"zip":  CategoryArchives,
		"exe":  CategoryExecutables,
		"go":   CategoryCode,
	}
	for ext, want := range tests {
		got, ok := table.Lookup(ext)
		if !ok || got != want {
			t.Errorf("Lookup(%q) = %q, %v; want %q", ext, got, ok, want)
		}
	}
}

// =============================================================================
// Table Tests
// =============================================================================

func TestTableOverlaysDefaults(t *testing.T) {
	cfg := GetDefault()
	cfg.Categories = map[string][]string{
		"Photos": {"jpg", ".JPEG"},
		"Comics": {"cbz"},
	}

	table, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}

	if got, _ := table.Lookup("jpg"); got != "Photos" {
		t.Errorf("jpg should be overridden to Photos, got %q", got)
	}
	if got, _ := table.Lookup("jpeg"); got != "Photos" {
		t.Errorf("jpeg should be overridden to Photos, got %q", got)
	}
	if got, _ := table.Lookup("cbz"); got != "Comics" {
		t.Errorf("cbz should map to Comics, got %q", got)
	}
	if got, _ := table.Lookup("png"); got != CategoryPictures {
		t.Errorf("png should keep its default, got %q", got)
	}
}

func TestTableReplaceDefaults(t *testing.T) {
	cfg := GetDefault()
	cfg.ReplaceDefaults = true
	cfg.Categories = map[string][]string{"images": {"jpg"}}

	table, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("expected only the configured extension, got %d", table.Len())
	}
	if _, ok := table.Lookup("png"); ok {
		t.Error("png should not be classified when defaults are replaced")
	}
}

func TestTableRejectsConflicts(t *testing.T) {
	tests := []struct {
		name       string
		categories map[string][]string
	}{
		{"same extension twice", map[string][]string{"a": {"jpg"}, "b": {"JPG"}}},
		{"empty extension", map[string][]string{"a": {"."}}},
		{"bad category", map[string][]string{"a/b": {"jpg"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			cfg.Categories = tt.categories
			if _, err := cfg.Table(); err == nil {
				t.Error("expected an error")
			}
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should reject the table too")
			}
		})
	}
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty fallback", func(c *Config) { c.FallbackCategory = "" }, "fallback_category"},
		{"fallback with separator", func(c *Config) { c.FallbackCategory = "a/b" }, "fallback_category"},
		{"bad exclude pattern", func(c *Config) { c.ExcludePatterns = []string{"[unclosed"} }, "exclude pattern"},
		{"bad mismatch policy", func(c *Config) { c.Detection.OnMismatch = "ask" }, "on_mismatch"},
		{"bad binary policy", func(c *Config) { c.Detection.Binaries = "delete" }, "binaries"},
		{"bad manual category", func(c *Config) { c.Detection.ManualCategory = ".." }, "manual_category"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"schedule without name", func(c *Config) {
			c.Schedules = []Schedule{{Cron: "@daily", Directory: "/tmp"}}
		}, "name is required"},
		{"duplicate schedule", func(c *Config) {
			c.Schedules = []Schedule{
				{Name: "dl", Cron: "@daily", Directory: "/tmp"},
				{Name: "dl", Cron: "@hourly", Directory: "/tmp"},
			}
		}, "duplicate"},
		{"bad cron", func(c *Config) {
			c.Schedules = []Schedule{{Name: "dl", Cron: "every day", Directory: "/tmp"}}
		}, "cron"},
		{"relative schedule directory", func(c *Config) {
			c.Schedules = []Schedule{{Name: "dl", Cron: "0 * * * *", Directory: "Downloads"}}
		}, "absolute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSchedules(t *testing.T) {
	dir := t.TempDir()
	cfg := GetDefault()
	cfg.Schedules = []Schedule{
		{Name: "downloads", Cron: "*/15 * * * *", Directory: dir},
		{Name: "desktop", Cron: "@daily", Directory: dir, DryRun: true},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid schedules, got %v", err)
	}
}

func TestDetectionPolicy(t *testing.T) {
	cfg := GetDefault()
	cfg.Detection.OnMismatch = "signature"
	cfg.Detection.Binaries = "skip"

	p := cfg.DetectionPolicy()
	if p.OnMismatch != detect.MismatchSignature {
		t.Errorf("expected signature policy, got %q", p.OnMismatch)
	}
	if p.Binaries != detect.BinarySkip {
		t.Errorf("expected binaries to be skipped, got %q", p.Binaries)
	}

	cfg.Detection.OnMismatch = "bogus"
	if got := cfg.DetectionPolicy().OnMismatch; got != detect.MismatchManual {
		t.Errorf("invalid policy should fall back to manual, got %q", got)
	}
}

// =============================================================================
// Load / Save Tests
// =============================================================================

func TestLoadNonExistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load should not fail for a missing file: %v", err)
	}
	if cfg.FallbackCategory != DefaultFallbackCategory {
		t.Error("expected defaults for a missing file")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
directory: /srv/inbox
fallback_category: Misc
skip_hidden: true
categories:
  Comics: [cbz, cbr]
detection:
  on_mismatch: signature
schedules:
  - name: inbox
    cron: "@hourly"
    directory: /srv/inbox
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Directory != "/srv/inbox" {
		t.Errorf("directory = %q", cfg.Directory)
	}
	if cfg.FallbackCategory != "Misc" {
		t.Errorf("fallback = %q", cfg.FallbackCategory)
	}
	if !cfg.SkipHidden {
		t.Error("expected skip_hidden")
	}
	if cfg.Detection.OnMismatch != "signature" {
		t.Errorf("on_mismatch = %q", cfg.Detection.OnMismatch)
	}
	// Fields absent from the file keep their defaults
	if !cfg.Detection.Enabled {
		t.Error("detection.enabled should keep its default")
	}
	if cfg.Detection.ManualCategory != DefaultManualCategory {
		t.Errorf("manual_category = %q", cfg.Detection.ManualCategory)
	}
	if len(cfg.Schedules) != 1 || cfg.Schedules[0].Name != "inbox" {
		t.Errorf("schedules = %+v", cfg.Schedules)
	}

	table, err := cfg.Table()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := table.Lookup("cbr"); got != "Comics" {
		t.Errorf("cbr = %q", got)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
fallback_category = "Other"
replace_defaults = true

[categories]
Pictures = ["jpg", "png"]

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.FallbackCategory != "Other" {
		t.Errorf("fallback = %q", cfg.FallbackCategory)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}

	table, err := cfg.Table()
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 extensions, got %d", table.Len())
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("categories: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(broken); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("expected a parse error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("fallback_category: \"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := GetDefault()
			cfg.FallbackCategory = "Leftovers"
			cfg.Categories = map[string][]string{"Books": {"epub", "mobi"}}
			cfg.Detection.Binaries = "skip"

			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if loaded.FallbackCategory != "Leftovers" {
				t.Errorf("fallback = %q", loaded.FallbackCategory)
			}
			if loaded.Detection.Binaries != "skip" {
				t.Errorf("binaries = %q", loaded.Detection.Binaries)
			}
			if len(loaded.Categories["Books"]) != 2 {
				t.Errorf("categories = %v", loaded.Categories)
			}
		})
	}
}

func TestEnsureConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sortify", "config.yaml")

	created, err := EnsureConfigExists(path)
	if err != nil {
		t.Fatalf("EnsureConfigExists: %v", err)
	}
	if !created {
		t.Error("expected the file to be created")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.ReplaceDefaults {
		t.Error("written config should carry the full table")
	}
	if len(cfg.Categories) != len(DefaultCategories()) {
		t.Errorf("expected %d categories, got %d", len(DefaultCategories()), len(cfg.Categories))
	}

	created, err = EnsureConfigExists(path)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("an existing file must not be rewritten")
	}
}
