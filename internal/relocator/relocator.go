// Package relocator moves classified files into their category folders
// without ever overwriting an existing file.
package relocator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/sortify-app/sortify/internal/classifier"
	"github.com/sortify-app/sortify/internal/scanner"
)

// DefaultMaxSuffix is the highest numeric suffix tried before falling back
// to a timestamp
const DefaultMaxSuffix = 9999

// Outcome is what happened to one file
type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome in reports
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// MoveResult records what happened to one scanned file
type MoveResult struct {
	Source      string      `json:"source" yaml:"source"`
	Destination string      `json:"destination,omitempty" yaml:"destination,omitempty"`
	Category    string      `json:"category,omitempty" yaml:"category,omitempty"`
	Outcome     Outcome     `json:"outcome" yaml:"outcome"`
	Reason      ErrorReason `json:"reason,omitempty" yaml:"reason,omitempty"`
	Detail      string      `json:"detail,omitempty" yaml:"detail,omitempty"`
	Renamed     bool        `json:"renamed,omitempty" yaml:"renamed,omitempty"`
	DryRun      bool        `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Size        int64       `json:"size" yaml:"size"`
	Err         *MoveError  `json:"-" yaml:"-"`
}

// Skipped builds the result for a file the pass decided not to move
func Skipped(entry scanner.FileEntry, detail string) MoveResult {
	return MoveResult{
		Source:  entry.Path,
		Outcome: OutcomeSkipped,
		Detail:  detail,
		Size:    entry.Size,
	}
}

// Options configures a Relocator
type Options struct {
	DryRun    bool
	MaxSuffix int
	DirMode   os.FileMode
	Logger    *slog.Logger
	// Now stamps the last-resort collision suffix
	Now func() time.Time
}

// Relocator moves files into category folders. A Relocator belongs to one
// pass and is not safe for concurrent use: in dry-run mode it remembers the
// names it has already planned.
type Relocator struct {
	dryRun    bool
	maxSuffix int
	dirMode   os.FileMode
	logger    *slog.Logger
	now       func() time.Time
	planned   map[string]struct{}
	// vacated holds sources a dry run has already planned to move away
	vacated map[string]struct{}
}

// New creates a new Relocator
func New(opts Options) *Relocator {
	r := &Relocator{
		dryRun:    opts.DryRun,
		maxSuffix: opts.MaxSuffix,
		dirMode:   opts.DirMode,
		logger:    opts.Logger,
		now:       opts.Now,
		planned:   make(map[string]struct{}),
		vacated:   make(map[string]struct{}),
	}
	if r.maxSuffix <= 0 {
		r.maxSuffix = DefaultMaxSuffix
	}
	if r.dirMode == 0 {
		r.dirMode = 0o755
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Relocate moves entry into baseDir/category, creating the folder if needed.
// An existing file is never replaced: the name gets a _N suffix instead.
// Failures are reported in the result, never returned.
func (r *Relocator) Relocate(entry scanner.FileEntry, category, baseDir string) MoveResult {
	result := MoveResult{
		Source:   entry.Path,
		Category: category,
		DryRun:   r.dryRun,
		Size:     entry.Size,
	}

	if err := classifier.ValidateCategory(category); err != nil {
		return r.fail(result, &MoveError{Path: entry.Path, Reason: ErrorIO, Original: err})
	}

	if sourceGone(entry.Path) {
		return r.fail(result, &MoveError{Path: entry.Path, Reason: ErrorSourceVanished, Original: fs.ErrNotExist})
	}

	targetDir := filepath.Join(baseDir, category)

	ownName := false
	if r.occupied(targetDir) {
		if !sameFile(targetDir, entry.Path) {
			return r.fail(result, &MoveError{
				Path:     entry.Path,
				Reason:   ErrorIO,
				Original: fmt.Errorf("%w: %s", ErrFolderOccupied, targetDir),
			})
		}
		ownName = true
	}

	if r.dryRun {
		dest, err := r.plan(targetDir, entry.Name)
		if err != nil {
			return r.fail(result, CategorizeError(targetDir, err))
		}
		r.vacated[entry.Path] = struct{}{}
		result.Outcome = OutcomeMoved
		result.Destination = dest
		result.Renamed = filepath.Base(dest) != entry.Name
		return result
	}

	if ownName {
		return r.relocateIntoOwnName(entry, targetDir, result)
	}

	if err := os.MkdirAll(targetDir, r.dirMode); err != nil {
		moveErr := CategorizeError(targetDir, err)
		if moveErr.Reason == ErrorSourceVanished {
			// ENOENT here is about the base directory, not the file
			moveErr.Reason = ErrorDirectoryNotFound
		}
		return r.fail(result, moveErr)
	}

	dest, err := r.claim(entry.Path, targetDir, entry.Name)
	if err != nil {
		moveErr := CategorizeError(entry.Path, err)
		if moveErr.Reason == ErrorSourceVanished && !sourceGone(entry.Path) {
			moveErr.Reason = ErrorIO
		}
		return r.fail(result, moveErr)
	}

	result.Outcome = OutcomeMoved
	result.Destination = dest
	result.Renamed = filepath.Base(dest) != entry.Name
	if result.Renamed {
		r.logger.Info("name taken, renamed", "source", entry.Path, "destination", dest)
	}
	r.logger.Debug("moved", "source", entry.Path, "destination", dest, "category", category)
	return result
}

// relocateIntoOwnName moves a file whose name is its own category, such as
// an extensionless "Uncategorized". The file steps aside, the folder takes
// its name and the file moves in.
func (r *Relocator) relocateIntoOwnName(entry scanner.FileEntry, targetDir string, result MoveResult) MoveResult {
	baseDir := filepath.Dir(targetDir)
	stash, err := r.claim(entry.Path, baseDir, "."+entry.Name+".sortify")
	if err != nil {
		return r.fail(result, CategorizeError(entry.Path, err))
	}

	if err := os.MkdirAll(targetDir, r.dirMode); err != nil {
		if rerr := moveNoReplace(stash, entry.Path); rerr != nil {
			r.logger.Error("failed to restore file", "file", entry.Path, "stash", stash, "error", rerr)
		}
		return r.fail(result, CategorizeError(targetDir, err))
	}

	dest, err := r.claim(stash, targetDir, entry.Name)
	if err != nil {
		return r.fail(result, CategorizeError(stash, err))
	}

	result.Outcome = OutcomeMoved
	result.Destination = dest
	result.Renamed = filepath.Base(dest) != entry.Name
	r.logger.Debug("moved into folder of its own name", "source", entry.Path, "destination", dest)
	return result
}

// occupied reports whether something other than a directory sits where the
// category folder belongs. A file a dry run already moved away does not count.
func (r *Relocator) occupied(targetDir string) bool {
	info, err := os.Stat(targetDir)
	if err != nil || info.IsDir() {
		return false
	}
	if r.dryRun {
		for src := range r.vacated {
			if sameFile(targetDir, src) {
				return false
			}
		}
	}
	return true
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// claim tries candidate names in order until one is moved into place
func (r *Relocator) claim(src, targetDir, name string) (string, error) {
	var lastErr error
	for i := 0; i <= r.maxSuffix+1; i++ {
		dest := filepath.Join(targetDir, r.candidate(name, i))
		err := moveNoReplace(src, dest)
		if err == nil {
			return dest, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("no free name for %s in %s: %w", name, targetDir, lastErr)
}

// plan picks the destination a real run would use, without touching disk
func (r *Relocator) plan(targetDir, name string) (string, error) {
	for i := 0; i <= r.maxSuffix+1; i++ {
		dest := filepath.Join(targetDir, r.candidate(name, i))
		if _, ok := r.planned[dest]; ok {
			continue
		}
		_, err := os.Lstat(dest)
		if err == nil {
			continue
		}
		// ENOTDIR: the folder is still a file that this pass moves away first
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return "", err
		}
		r.planned[dest] = struct{}{}
		return dest, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", name, targetDir)
}

// candidate returns the i-th name to try: the original, then stem_1.ext up
// to stem_<max>.ext, then stem_<unix time>.ext
func (r *Relocator) candidate(name string, i int) string {
	if i == 0 {
		return name
	}
	suffix := strconv.Itoa(i)
	if i > r.maxSuffix {
		suffix = strconv.FormatInt(r.now().Unix(), 10)
	}
	return DisambiguatedName(name, suffix)
}

// DisambiguatedName inserts _suffix before the extension of name
func DisambiguatedName(name, suffix string) string {
	stem := scanner.StemOf(name)
	ext := name[len(stem):]
	return stem + "_" + suffix + ext
}

func (r *Relocator) fail(result MoveResult, err *MoveError) MoveResult {
	result.Outcome = OutcomeFailed
	result.Reason = err.Reason
	result.Detail = err.UserMessage()
	result.Err = err
	r.logger.Warn("move failed", "source", result.Source, "reason", err.Reason.String(), "error", err.Original)
	return result
}
