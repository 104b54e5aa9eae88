package relocator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sortify-app/sortify/internal/scanner"
	"github.com/sortify-app/sortify/internal/testutil"
)

func entryFor(t *testing.T, path string) scanner.FileEntry {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err)
	name := filepath.Base(path)
	return scanner.FileEntry{
		Name:      name,
		Path:      path,
		Extension: scanner.ExtensionOf(name),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
	}
}

func TestDisambiguatedName(t *testing.T) {
	tests := []struct {
		name   string
		suffix string
		want   string
	}{
		{"a.jpg", "1", "a_1.jpg"},
		{"archive.tar.gz", "2", "archive.tar_2.gz"},
		{"README", "1", "README_1"},
		{".bashrc", "3", ".bashrc_3"},
		{"photo.JPG", "12", "photo_12.JPG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisambiguatedName(tt.name, tt.suffix))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "moved", OutcomeMoved.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", Outcome(42).String())

	text, err := OutcomeSkipped.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "skipped", string(text))
}

func TestRelocateMovesIntoCategory(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateFile("a.jpg", []byte("picture"))

	r := New(Options{})
	result := r.Relocate(entryFor(t, src), "images", f.RootDir)

	assert.Equal(t, OutcomeMoved, result.Outcome)
	assert.Equal(t, f.Path("images/a.jpg"), result.Destination)
	assert.Equal(t, "images", result.Category)
	assert.False(t, result.Renamed)
	assert.False(t, result.DryRun)
	assert.Equal(t, int64(7), result.Size)
	assert.Nil(t, result.Err)

	f.AssertFileNotExists("a.jpg")
	f.AssertFileContent("images/a.jpg", []byte("picture"))
}

func TestRelocateNeverOverwrites(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("images/a.jpg", []byte("old"))
	f.CreateFile("images/a_1.jpg", []byte("older"))
	src := f.CreateFile("a.jpg", []byte("new"))

	result := New(Options{}).Relocate(entryFor(t, src), "images", f.RootDir)

	require.Equal(t, OutcomeMoved, result.Outcome)
	assert.True(t, result.Renamed)
	assert.Equal(t, f.Path("images/a_2.jpg"), result.Destination)

	f.AssertFileContent("images/a.jpg", []byte("old"))
	f.AssertFileContent("images/a_1.jpg", []byte("older"))
	f.AssertFileContent("images/a_2.jpg", []byte("new"))
	f.AssertFileNotExists("a.jpg")
}

func TestRelocateFallsBackToTimestamp(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("docs/n.txt", []byte("0"))
	f.CreateFile("docs/n_1.txt", []byte("1"))
	f.CreateFile("docs/n_2.txt", []byte("2"))
	src := f.CreateFile("n.txt", []byte("new"))

	stamp := time.Unix(1700000000, 0)
	r := New(Options{MaxSuffix: 2, Now: func() time.Time { return stamp }})
	result := r.Relocate(entryFor(t, src), "docs", f.RootDir)

	require.Equal(t, OutcomeMoved, result.Outcome)
	assert.Equal(t, f.Path("docs/n_1700000000.txt"), result.Destination)
	f.AssertFileContent("docs/n_1700000000.txt", []byte("new"))
}

func TestRelocateVanishedSource(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateFile("gone.txt", []byte("x"))
	entry := entryFor(t, src)
	require.NoError(t, os.Remove(src))

	result := New(Options{}).Relocate(entry, "documents", f.RootDir)

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, ErrorSourceVanished, result.Reason)
	require.NotNil(t, result.Err)
	assert.ErrorIs(t, result.Err, os.ErrNotExist)
	assert.Contains(t, result.Detail, "gone.txt")
	assert.False(t, f.FileExists("documents"), "no folder for a vanished file")
}

func TestRelocateRejectsBadCategory(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateFile("a.jpg", []byte("x"))

	for _, category := range []string{"", "..", "a/b"} {
		result := New(Options{}).Relocate(entryFor(t, src), category, f.RootDir)
		assert.Equal(t, OutcomeFailed, result.Outcome, category)
	}
	f.AssertFileExists("a.jpg")
}

func TestRelocateReadOnlyDirectory(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	src := f.CreateFile("a.jpg", []byte("x"))
	f.MakeReadOnlyDir(".")

	result := New(Options{}).Relocate(entryFor(t, src), "images", f.RootDir)

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, ErrorPermissionDenied, result.Reason)
	f.AssertFileExists("a.jpg")
}

func TestRelocateReadOnlyCategoryFolder(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	f.CreateDir("images")
	f.MakeReadOnlyDir("images")
	src := f.CreateFile("a.jpg", []byte("x"))

	result := New(Options{}).Relocate(entryFor(t, src), "images", f.RootDir)

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, ErrorPermissionDenied, result.Reason)
	f.AssertFileContent("a.jpg", []byte("x"))
}

func TestDryRunTouchesNothing(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateFile("a.jpg", []byte("x"))

	result := New(Options{DryRun: true}).Relocate(entryFor(t, src), "images", f.RootDir)

	assert.Equal(t, OutcomeMoved, result.Outcome)
	assert.True(t, result.DryRun)
	assert.Equal(t, f.Path("images/a.jpg"), result.Destination)
	f.AssertFileExists("a.jpg")
	assert.False(t, f.FileExists("images"), "dry run must not create folders")
}

func TestDryRunPlansDistinctNames(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("images/a.jpg", []byte("existing"))
	first := f.CreateFile("a.jpg", []byte("1"))
	second := f.CreateFile("other/a.jpg", []byte("2"))

	r := New(Options{DryRun: true})
	one := r.Relocate(entryFor(t, first), "images", f.RootDir)
	two := r.Relocate(entryFor(t, second), "images", f.RootDir)

	assert.Equal(t, f.Path("images/a_1.jpg"), one.Destination)
	assert.Equal(t, f.Path("images/a_2.jpg"), two.Destination)
	assert.True(t, one.Renamed)
	assert.True(t, two.Renamed)
	assert.Equal(t, []string{"a.jpg"}, f.Files("images"))
}

func TestRelocateIntoFolderOfOwnName(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateFile("Uncategorized", []byte("mine"))

	result := New(Options{}).Relocate(entryFor(t, src), "Uncategorized", f.RootDir)

	require.Equal(t, OutcomeMoved, result.Outcome, result.Detail)
	assert.Equal(t, f.Path("Uncategorized/Uncategorized"), result.Destination)
	assert.False(t, result.Renamed)
	f.AssertFileContent("Uncategorized/Uncategorized", []byte("mine"))
	assert.Empty(t, f.Files("."))
}

func TestRelocateOccupiedFolder(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("Documents", []byte("blocker"))
	src := f.CreateFile("a.txt", []byte("x"))

	result := New(Options{}).Relocate(entryFor(t, src), "Documents", f.RootDir)

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, ErrorIO, result.Reason)
	assert.ErrorIs(t, result.Err, ErrFolderOccupied)
	assert.Contains(t, result.Detail, f.Path("Documents"))
	f.AssertFileContent("Documents", []byte("blocker"))
	f.AssertFileExists("a.txt")
}

func TestDryRunFolderVacatedEarlier(t *testing.T) {
	f := testutil.NewFixture(t)
	blocker := f.CreateFile("Documents", []byte("blocker"))
	src := f.CreateFile("a.txt", []byte("x"))

	r := New(Options{DryRun: true})
	first := r.Relocate(entryFor(t, blocker), "Other", f.RootDir)
	second := r.Relocate(entryFor(t, src), "Documents", f.RootDir)

	assert.Equal(t, OutcomeMoved, first.Outcome)
	require.Equal(t, OutcomeMoved, second.Outcome, second.Detail)
	assert.Equal(t, f.Path("Documents/a.txt"), second.Destination)
	f.AssertFileContent("Documents", []byte("blocker"))
}

func TestMoveNoReplaceRefusesExisting(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateFile("src.txt", []byte("src"))
	dst := f.CreateFile("dst.txt", []byte("dst"))

	err := moveNoReplace(src, dst)
	assert.ErrorIs(t, err, os.ErrExist)
	f.AssertFileContent("src.txt", []byte("src"))
	f.AssertFileContent("dst.txt", []byte("dst"))
}

func TestLinkMoveAndCopyMove(t *testing.T) {
	f := testutil.NewFixture(t)

	src := f.CreateFile("linked.txt", []byte("via link"))
	require.NoError(t, linkMove(src, f.Path("linked_dst.txt")))
	f.AssertFileNotExists("linked.txt")
	f.AssertFileContent("linked_dst.txt", []byte("via link"))

	src = f.CreateFile("copied.txt", []byte("via copy"))
	require.NoError(t, copyMove(src, f.Path("copied_dst.txt")))
	f.AssertFileNotExists("copied.txt")
	f.AssertFileContent("copied_dst.txt", []byte("via copy"))

	src = f.CreateFile("blocked.txt", []byte("mine"))
	f.CreateFile("taken.txt", []byte("theirs"))
	assert.ErrorIs(t, linkMove(src, f.Path("taken.txt")), os.ErrExist)
	assert.ErrorIs(t, copyMove(src, f.Path("taken.txt")), os.ErrExist)
	f.AssertFileContent("blocked.txt", []byte("mine"))
	f.AssertFileContent("taken.txt", []byte("theirs"))
}

func TestSkipped(t *testing.T) {
	entry := scanner.FileEntry{Name: "x.part", Path: "/tmp/x.part", Size: 3}
	result := Skipped(entry, "excluded")

	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Equal(t, "/tmp/x.part", result.Source)
	assert.Equal(t, "excluded", result.Detail)
	assert.Equal(t, int64(3), result.Size)
	assert.Empty(t, result.Destination)
}
