package scanner

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Options controls which directory children a Scanner yields
type Options struct {
	// ExcludePatterns are globs matched against bare file names
	ExcludePatterns []string
	// SkipHidden drops dotfiles
	SkipHidden bool
	// IgnorePaths are files never yielded, e.g. the running binary or the config file
	IgnorePaths []string
}

// Scanner lists the regular files directly inside a directory
type Scanner struct {
	exclude    []string
	skipHidden bool
	ignore     map[string]struct{}
}

// New creates a new Scanner
func New(opts Options) *Scanner {
	s := &Scanner{
		exclude:    append([]string(nil), opts.ExcludePatterns...),
		skipHidden: opts.SkipHidden,
		ignore:     make(map[string]struct{}, len(opts.IgnorePaths)),
	}
	for _, p := range opts.IgnorePaths {
		if p == "" {
			continue
		}
		s.ignore[canonical(p)] = struct{}{}
	}
	return s
}

// Listing is a snapshot of a directory taken when Scan was called
type Listing struct {
	Dir     string
	scanner *Scanner
	entries []os.DirEntry
}

// Scan snapshots dir and returns a Listing over its regular files.
// The directory must exist and be readable; subdirectories are not entered.
func (s *Scanner) Scan(dir string) (*Listing, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &ScanError{Dir: dir, Reason: ErrDirectoryNotFound, Err: err}
	}
	abs = canonical(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, classifyScanError(abs, err)
	}
	if !info.IsDir() {
		return nil, &ScanError{Dir: abs, Reason: ErrDirectoryNotFound, Err: errors.New("not a directory")}
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, classifyScanError(abs, err)
	}

	return &Listing{Dir: abs, scanner: s, entries: entries}, nil
}

// Len returns the number of candidate files in the snapshot. Files removed
// before they are reached are not yielded, so All may produce fewer.
func (l *Listing) Len() int {
	n := 0
	for _, de := range l.entries {
		if l.scanner.accepts(l.Dir, de) {
			n++
		}
	}
	return n
}

// All yields a FileEntry per regular file. Metadata is read lazily, one
// entry at a time. The sequence can be iterated again; each iteration
// replays the same snapshot.
func (l *Listing) All() iter.Seq[FileEntry] {
	return func(yield func(FileEntry) bool) {
		for _, de := range l.entries {
			entry, ok := l.entry(de)
			if !ok {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Entry returns the snapshot file called name. A case-insensitive match is
// accepted when there is no exact one. ok is false for names that were not
// listed, are excluded or have vanished.
func (l *Listing) Entry(name string) (FileEntry, bool) {
	var folded os.DirEntry
	for _, de := range l.entries {
		if de.Name() == name {
			return l.entry(de)
		}
		if folded == nil && strings.EqualFold(de.Name(), name) {
			folded = de
		}
	}
	if folded == nil {
		return FileEntry{}, false
	}
	return l.entry(folded)
}

func (l *Listing) entry(de os.DirEntry) (FileEntry, bool) {
	if !l.scanner.accepts(l.Dir, de) {
		return FileEntry{}, false
	}

	info, err := de.Info()
	if err != nil {
		// Vanished since the listing; it was never produced
		return FileEntry{}, false
	}
	if !info.Mode().IsRegular() {
		return FileEntry{}, false
	}

	return FileEntry{
		Name:      de.Name(),
		Path:      filepath.Join(l.Dir, de.Name()),
		Extension: ExtensionOf(de.Name()),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
	}, true
}

// Entries collects the whole sequence
func (l *Listing) Entries() []FileEntry {
	var out []FileEntry
	for e := range l.All() {
		out = append(out, e)
	}
	return out
}

func (s *Scanner) accepts(dir string, de os.DirEntry) bool {
	// Symlinks, directories, sockets and devices all carry type bits
	if !de.Type().IsRegular() {
		return false
	}

	name := de.Name()
	if s.skipHidden && strings.HasPrefix(name, ".") {
		return false
	}
	if _, ok := s.ignore[filepath.Join(dir, name)]; ok {
		return false
	}
	for _, pattern := range s.exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return false
		}
	}
	return true
}

func classifyScanError(dir string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &ScanError{Dir: dir, Reason: ErrDirectoryNotFound, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &ScanError{Dir: dir, Reason: ErrPermissionDenied, Err: err}
	default:
		return &ScanError{Dir: dir, Reason: ErrDirectoryNotFound, Err: err}
	}
}

// canonical resolves symlinks where possible so paths compare reliably
func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
