package library

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RKrahl/photoidx/consts"
)

func filenames(t *testing.T, idx *Index) []string {
	t.Helper()
	var names []string
	for item := range idx.Items() {
		names = append(names, item.Filename)
	}
	require.NoError(t, idx.Err())
	return names
}

func day(d int) time.Time {
	return time.Date(2016, 3, d, 10, 0, 0, 0, time.UTC)
}

func TestCreateIsLazy(t *testing.T) {
	dir := t.TempDir()
	writePhotos(t, dir, "e.jpg", "a.jpg", "c.jpg", "b.jpg", "d.jpg", "notes.txt", "UPPER.JPG", "sub/x.jpg")
	meta := &fakeMetadata{dates: map[string]time.Time{"a.jpg": day(1)}}
	ctx := context.Background()

	idx, err := Create(ctx, dir, ScanOptions{Checksums: []string{"md5"}, Metadata: meta})
	require.NoError(t, err)
	defer idx.Close()
	assert.Zero(t, meta.Calls())
	assert.Zero(t, idx.Pulled())

	item, err := idx.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", item.Filename)
	assert.Equal(t, 2, meta.Calls())
	assert.Len(t, item.Checksum["md5"], 32)

	n, err := idx.Len()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, meta.Calls())
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"}, filenames(t, idx))

	first, err := idx.Get(0)
	require.NoError(t, err)
	require.NotNil(t, first.CreateDate)
	assert.True(t, day(1).Equal(*first.CreateDate))
}

func TestScanErrors(t *testing.T) {
	dir := t.TempDir()
	writePhotos(t, dir, "a.jpg", "b.jpg", "c.jpg")
	boom := errors.New("unreadable")
	meta := &fakeMetadata{fail: map[string]error{"b.jpg": boom}}
	ctx := context.Background()

	_, err := Create(ctx, dir, ScanOptions{Checksums: []string{"crc"}})
	assert.ErrorAs(t, err, new(UnknownAlgorithm))

	idx, err := Create(ctx, dir, ScanOptions{Metadata: meta})
	require.NoError(t, err)
	_, err = idx.Get(0)
	require.NoError(t, err)
	_, err = idx.Get(1)
	assert.True(t, errors.Is(err, boom))
	_, err = idx.Len()
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(idx.Write(ctx, ""), boom))
	_, err = os.Stat(filepath.Join(dir, DefaultFilename))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "failed write must not create the file")

	cctx, cancel := context.WithCancel(ctx)
	idx, err = Create(cctx, dir, ScanOptions{Metadata: &fakeMetadata{}})
	require.NoError(t, err)
	cancel()
	_, err = idx.Get(0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestChecksumCacheIsUsed(t *testing.T) {
	dir := t.TempDir()
	writePhotos(t, dir, "a.jpg", "b.jpg")
	cache := &memoryCache{sums: map[string]map[string]string{
		filepath.Join(dir, "a.jpg"): {"md5": "cached"},
	}}
	idx, err := Create(context.Background(), dir, ScanOptions{Checksums: []string{"md5"}, Metadata: &fakeMetadata{}, Cache: cache})
	require.NoError(t, err)
	a, err := idx.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "cached", a.Checksum["md5"])
	b, err := idx.Get(1)
	require.NoError(t, err)
	assert.Len(t, b.Checksum["md5"], 32)
	assert.Equal(t, 1, cache.stored)
}

func TestWriteThenOpen(t *testing.T) {
	dir := t.TempDir()
	writePhotos(t, dir, "a.jpg", "b.jpg", "c.jpg")
	meta := &fakeMetadata{dates: map[string]time.Time{"a.jpg": day(3), "b.jpg": day(1)}}
	ctx := context.Background()

	idx, err := Create(ctx, dir, ScanOptions{Checksums: []string{"md5", "sha256"}, Metadata: meta})
	require.NoError(t, err)
	b, err := idx.Get(1)
	require.NoError(t, err)
	require.NoError(t, b.AddTag("Hakone"))
	b.Name = "Lake Ashi"
	b.Selected = true
	require.NoError(t, idx.Write(ctx, ""))
	assert.Equal(t, filepath.Join(dir, DefaultFilename), idx.Path())
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	written, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)

	reopened, err := Open(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, reopened.Root())
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, filenames(t, reopened))
	item, err := reopened.Lookup("b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Lake Ashi", item.DisplayName())
	assert.True(t, item.Selected)
	assert.True(t, item.Tags.Has("Hakone"))
	assert.Equal(t, b.Checksum, item.Checksum)

	require.NoError(t, reopened.Write(ctx, ""))
	rewritten, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)
	assert.Equal(t, string(written), string(rewritten))

	_, err = reopened.Lookup("z.jpg")
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, reopened.Close())
}

func TestTaggedIndexRewritesIdentically(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("testdata", "index-tagged.yaml"))
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFilename), fixture, 0644))
	ctx := context.Background()

	idx, err := Open(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, idx.Write(ctx, ""))
	require.NoError(t, idx.Close())

	written, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)
	assert.Equal(t, string(fixture), string(written))
	assert.Contains(t, string(written), "    N: 35.")
	assert.NotContains(t, string(written), `"N"`)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestExtendDirectory(t *testing.T) {
	root := t.TempDir()
	writePhotos(t, root, "a.jpg")
	opts := ScanOptions{Metadata: &fakeMetadata{}}
	ctx := context.Background()

	idx, err := Create(ctx, root, opts)
	require.NoError(t, err)
	require.NoError(t, idx.Write(ctx, ""))
	defer idx.Close()

	writePhotos(t, root, "Japan/dsc_4623.jpg", "Japan/dsc_4624.jpg", "b.jpg")
	require.NoError(t, idx.ExtendDirectory(ctx, filepath.Join(root, "Japan"), opts))
	assert.Equal(t, []string{"a.jpg", "Japan/dsc_4623.jpg", "Japan/dsc_4624.jpg"}, filenames(t, idx))

	require.NoError(t, idx.ExtendDirectory(ctx, root, opts))
	require.NoError(t, idx.ExtendDirectory(ctx, filepath.Join(root, "Japan"), opts))
	assert.Equal(t, []string{"a.jpg", "Japan/dsc_4623.jpg", "Japan/dsc_4624.jpg", "b.jpg"}, filenames(t, idx))

	assert.Error(t, idx.ExtendDirectory(ctx, t.TempDir(), opts))
}

func TestExtendDirectoryFailureLeavesIndexUnchanged(t *testing.T) {
	root := t.TempDir()
	idx, err := New(root)
	require.NoError(t, err)
	writePhotos(t, root, "a.jpg", "b.jpg", "c.jpg")
	boom := errors.New("unreadable")
	opts := ScanOptions{Metadata: &fakeMetadata{fail: map[string]error{"b.jpg": boom}}}

	err = idx.ExtendDirectory(context.Background(), root, opts)
	assert.True(t, errors.Is(err, boom))
	n, err := idx.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMove(t *testing.T) {
	tests := []struct {
		from, to int
		want     []string
		wantErr  bool
	}{
		{from: 0, to: 2, want: []string{"b.jpg", "c.jpg", "a.jpg"}},
		{from: 0, to: -1, want: []string{"b.jpg", "c.jpg", "a.jpg"}},
		{from: 2, to: 0, want: []string{"c.jpg", "a.jpg", "b.jpg"}},
		{from: -1, to: 1, want: []string{"a.jpg", "c.jpg", "b.jpg"}},
		{from: 1, to: 1, want: []string{"a.jpg", "b.jpg", "c.jpg"}},
		{from: -3, to: -2, want: []string{"b.jpg", "a.jpg", "c.jpg"}},
		{from: 3, to: 0, wantErr: true},
		{from: 0, to: 3, wantErr: true},
		{from: 0, to: -4, wantErr: true},
	}
	for _, tt := range tests {
		idx, err := New(t.TempDir())
		require.NoError(t, err)
		for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
			require.NoError(t, idx.Append(randomItem(name)))
		}
		err = idx.Move(tt.from, tt.to)
		if tt.wantErr {
			assert.Error(t, err, "move %d to %d", tt.from, tt.to)
			assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, filenames(t, idx))
			continue
		}
		require.NoError(t, err, "move %d to %d", tt.from, tt.to)
		assert.Equal(t, tt.want, filenames(t, idx), "move %d to %d", tt.from, tt.to)
	}
}

func TestSequenceOperations(t *testing.T) {
	idx, err := New(t.TempDir())
	require.NoError(t, err)
	a, b, c := randomItem("a.jpg"), randomItem("b.jpg"), randomItem("c.jpg")
	require.NoError(t, idx.Append(a))
	require.NoError(t, idx.Append(c))
	require.NoError(t, idx.Insert(1, b))
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, filenames(t, idx))

	i, err := idx.IndexOf(c)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	require.NoError(t, idx.Move(2, 0))
	assert.Equal(t, []string{"c.jpg", "a.jpg", "b.jpg"}, filenames(t, idx))

	require.NoError(t, idx.Set(0, randomItem("d.jpg")))
	require.NoError(t, idx.Delete(-1))
	assert.Equal(t, []string{"d.jpg", "a.jpg"}, filenames(t, idx))
	_, err = idx.IndexOf(c)
	assert.Error(t, err)

	var matched []int
	for i, item := range idx.Filter(func(item *Item) bool { return item.Filename == "a.jpg" }) {
		assert.Equal(t, "a.jpg", item.Filename)
		matched = append(matched, i)
	}
	assert.Equal(t, []int{1}, matched)
}

func TestSortByDate(t *testing.T) {
	idx, err := New(t.TempDir())
	require.NoError(t, err)
	for _, d := range []struct {
		name string
		day  int
	}{{"undated1.jpg", 0}, {"c.jpg", 3}, {"a.jpg", 1}, {"undated2.jpg", 0}, {"b.jpg", 2}, {"b2.jpg", 2}} {
		item := &Item{Filename: d.name}
		if d.day > 0 {
			date := day(d.day)
			item.CreateDate = &date
		}
		require.NoError(t, idx.Append(item))
	}
	require.NoError(t, idx.SortByDate(consts.Ascending))
	assert.Equal(t, []string{"a.jpg", "b.jpg", "b2.jpg", "c.jpg", "undated1.jpg", "undated2.jpg"}, filenames(t, idx))
	require.NoError(t, idx.SortByDate(consts.Descending))
	assert.Equal(t, []string{"c.jpg", "b.jpg", "b2.jpg", "a.jpg", "undated1.jpg", "undated2.jpg"}, filenames(t, idx))
}

func writeIndex(t *testing.T, dir string) []byte {
	t.Helper()
	writePhotos(t, dir, "a.jpg", "b.jpg")
	ctx := context.Background()
	idx, err := Create(ctx, dir, ScanOptions{Metadata: &fakeMetadata{}})
	require.NoError(t, err)
	require.NoError(t, idx.Write(ctx, ""))
	require.NoError(t, idx.Close())
	data, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)
	return data
}

func TestLockExclusion(t *testing.T) {
	dir := t.TempDir()
	before := writeIndex(t, dir)
	ctx := context.Background()

	reader1, err := Open(ctx, dir)
	require.NoError(t, err)
	reader2, err := Open(ctx, dir)
	require.NoError(t, err, "readers share the lock")

	require.NoError(t, reader2.Delete(0))
	err = reader2.Write(ctx, "")
	require.True(t, errors.Is(err, ErrAlreadyLocked))
	var locked *AlreadyLockedError
	require.ErrorAs(t, err, &locked)
	assert.True(t, locked.Exclusive)
	assert.Equal(t, filepath.Join(dir, DefaultFilename), locked.Path)

	after, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	// reader2 kept its shared lock after the failed write
	assert.True(t, errors.Is(reader1.Write(ctx, ""), ErrAlreadyLocked))

	require.NoError(t, reader1.Close())
	require.NoError(t, reader2.Write(ctx, ""))
	reader3, err := Open(ctx, dir)
	require.NoError(t, err, "writer returns to a shared lock")
	n, err := reader3.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, errors.Is(reader3.Write(ctx, ""), ErrAlreadyLocked))
	require.NoError(t, reader2.Close())
	require.NoError(t, reader3.Close())
}

func TestExclusiveLockBlocksReaders(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir)
	l := flock.New(filepath.Join(dir, DefaultFilename))
	ok, err := l.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer l.Unlock()

	_, err = Open(context.Background(), dir)
	var locked *AlreadyLockedError
	require.ErrorAs(t, err, &locked)
	assert.False(t, locked.Exclusive)
}

const lockHelperEnv = "PHOTOIDX_LOCK_HELPER"

// TestLockHelperProcess is not a real test, it holds a shared lock on
// behalf of TestLockAcrossProcesses until its stdin is closed.
func TestLockHelperProcess(t *testing.T) {
	dir := os.Getenv(lockHelperEnv)
	if dir == "" {
		t.Skip("helper process only")
	}
	idx, err := Open(context.Background(), dir)
	if err != nil {
		os.Stdout.WriteString("error " + err.Error() + "\n")
		os.Exit(1)
	}
	os.Stdout.WriteString("locked\n")
	bufio.NewReader(os.Stdin).ReadString('\n')
	idx.Close()
	os.Exit(0)
}

func TestLockAcrossProcesses(t *testing.T) {
	dir := t.TempDir()
	before := writeIndex(t, dir)
	ctx := context.Background()

	cmd := exec.Command(os.Args[0], "-test.run=^TestLockHelperProcess$")
	cmd.Env = append(os.Environ(), lockHelperEnv+"="+dir)
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	defer cmd.Wait()
	defer stdin.Close()

	line, err := bufio.NewReader(stdout).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "locked\n", line)

	idx, err := Open(ctx, dir)
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.Delete(0))
	assert.True(t, errors.Is(idx.Write(ctx, ""), ErrAlreadyLocked))
	after, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	require.NoError(t, stdin.Close())
	require.NoError(t, cmd.Wait())
	require.NoError(t, idx.Write(ctx, ""))
}
