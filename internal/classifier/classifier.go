// Package classifier maps file names to destination categories using an
// extension table. The table is data; adding an extension never needs code.
package classifier

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sortify-app/sortify/internal/scanner"
)

// Table maps a normalized extension to a category name. A Table is
// immutable once built and safe for concurrent readers.
type Table struct {
	byExt map[string]string
}

// NewTable builds a Table from an extension to category mapping. Keys are
// normalized with NormalizeExtension; two keys that normalize to the same
// extension but name different categories are rejected.
func NewTable(mapping map[string]string) (*Table, error) {
	t := &Table{byExt: make(map[string]string, len(mapping))}

	for rawExt, category := range mapping {
		ext := NormalizeExtension(rawExt)
		if ext == "" {
			return nil, fmt.Errorf("empty extension for category %q", category)
		}
		if strings.ContainsAny(ext, `/\.`) {
			return nil, fmt.Errorf("invalid extension %q", rawExt)
		}
		if err := ValidateCategory(category); err != nil {
			return nil, fmt.Errorf("extension %q: %w", rawExt, err)
		}
		if existing, ok := t.byExt[ext]; ok && existing != category {
			return nil, fmt.Errorf("extension %q maps to both %q and %q", ext, existing, category)
		}
		t.byExt[ext] = category
	}

	return t, nil
}

// MustTable is NewTable for static tables
func MustTable(mapping map[string]string) *Table {
	t, err := NewTable(mapping)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the category for ext, ignoring case and a leading dot
func (t *Table) Lookup(ext string) (string, bool) {
	if t == nil {
		return "", false
	}
	category, ok := t.byExt[NormalizeExtension(ext)]
	return category, ok
}

// Len returns the number of extensions in the table
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byExt)
}

// Categories returns the distinct category names, sorted
func (t *Table) Categories() []string {
	seen := make(map[string]struct{})
	for _, category := range t.byExt {
		seen[category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Extensions returns the sorted extensions routed to category
func (t *Table) Extensions(category string) []string {
	var out []string
	for ext, c := range t.byExt {
		if c == category {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// Mapping returns a copy of the table
func (t *Table) Mapping() map[string]string {
	out := make(map[string]string, len(t.byExt))
	for ext, category := range t.byExt {
		out[ext] = category
	}
	return out
}

// NormalizeExtension trims whitespace and leading dots and case-folds ext
func NormalizeExtension(ext string) string {
	ext = strings.TrimLeft(strings.TrimSpace(ext), ".")
	return cases.Fold().String(ext)
}

// ValidateCategory rejects names that cannot be a single subfolder
func ValidateCategory(category string) error {
	switch {
	case strings.TrimSpace(category) == "":
		return fmt.Errorf("category name is empty")
	case category == "." || category == "..":
		return fmt.Errorf("category name %q is not a folder name", category)
	case strings.ContainsAny(category, `/\`):
		return fmt.Errorf("category name %q contains a path separator", category)
	case strings.ContainsRune(category, 0):
		return fmt.Errorf("category name %q contains a NUL byte", category)
	}
	return nil
}

// Classifier reports which category a file belongs to
type Classifier struct {
	table *Table
}

// New creates a Classifier over table
func New(table *Table) *Classifier {
	return &Classifier{table: table}
}

// Table returns the classifier's table
func (c *Classifier) Table() *Table {
	return c.table
}

// Classify returns the entry's category. ok is false when the entry has no
// extension or the extension is not in the table.
func (c *Classifier) Classify(entry scanner.FileEntry) (category string, ok bool) {
	return c.ClassifyExtension(entry.Extension)
}

// ClassifyName classifies a bare file name
func (c *Classifier) ClassifyName(name string) (string, bool) {
	return c.ClassifyExtension(scanner.ExtensionOf(name))
}

// ClassifyExtension classifies an already extracted extension
func (c *Classifier) ClassifyExtension(ext string) (string, bool) {
	if ext == "" {
		return "", false
	}
	return c.table.Lookup(ext)
}
