package library

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RKrahl/photoidx/domain"
	"github.com/RKrahl/photoidx/domain/gps"
)

func randomItem(filename string) *Item {
	date := time.Date(2018, 2, 23, 13, 43, rand.Intn(60), 0, time.UTC)
	pos := gps.MustNew(47.123445, 8.54321)
	return &Item{
		Filename:    filename,
		Checksum:    map[string]string{"md5": fmt.Sprintf("%032x", rand.Uint64())},
		CreateDate:  &date,
		Orientation: domain.NormalOrientation,
		GPSPosition: &pos,
		Tags:        NewTagSet("Zurich"),
	}
}

// writePhotos creates files with distinct content below dir.
func writePhotos(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("content of "+name), 0644))
	}
}

// fakeMetadata hands out a capture date per file name and counts calls.
type fakeMetadata struct {
	mu    sync.Mutex
	dates map[string]time.Time
	fail  map[string]error
	calls int
}

func (f *fakeMetadata) ReadMetaData(_ context.Context, path string) (domain.MediaMetaData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	name := filepath.Base(path)
	if err := f.fail[name]; err != nil {
		return domain.MediaMetaData{}, err
	}
	var meta domain.MediaMetaData
	if d, found := f.dates[name]; found {
		meta.DateTaken = &d
		meta.Orientation = domain.NormalOrientation
	}
	return meta, nil
}

func (f *fakeMetadata) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memoryCache struct {
	sums   map[string]map[string]string
	stored int
}

func (c *memoryCache) Lookup(path string, _ fs.FileInfo, algs []string) (map[string]string, bool) {
	s, found := c.sums[path]
	if !found {
		return nil, false
	}
	for _, alg := range algs {
		if _, ok := s[alg]; !ok {
			return nil, false
		}
	}
	return s, true
}

func (c *memoryCache) Store(path string, _ fs.FileInfo, sums map[string]string) error {
	c.sums[path] = sums
	c.stored++
	return nil
}
