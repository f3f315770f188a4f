// Package sumcache stores checksums of photo files in a BoltDB file, so
// files that did not change are not hashed again.
package sumcache

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var checksumsBucket = []byte("checksums")

type entry struct {
	Size  int64             `json:"size"`
	MTime int64             `json:"mtime"`
	Sums  map[string]string `json:"sums"`
}

func (e entry) matches(info fs.FileInfo) bool {
	return e.Size == info.Size() && e.MTime == info.ModTime().UnixNano()
}

// Cache is keyed by absolute file path. An entry is only used while the
// file size and modification time are unchanged.
type Cache struct {
	db *bolt.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open checksum cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(checksumsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func key(path string) []byte {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return []byte(path)
}

func get(b *bolt.Bucket, k []byte) (e entry, found bool) {
	v := b.Get(k)
	if v == nil {
		return e, false
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, false
	}
	return e, true
}

// Lookup returns the cached sums for all algs, or false if any of them
// is missing or the file changed.
func (c *Cache) Lookup(path string, info fs.FileInfo, algs []string) (map[string]string, bool) {
	var sums map[string]string
	c.db.View(func(tx *bolt.Tx) error {
		e, found := get(tx.Bucket(checksumsBucket), key(path))
		if !found || !e.matches(info) {
			return nil
		}
		result := make(map[string]string, len(algs))
		for _, alg := range algs {
			s, ok := e.Sums[alg]
			if !ok {
				return nil
			}
			result[alg] = s
		}
		sums = result
		return nil
	})
	return sums, sums != nil
}

// Store records sums for the file, merging with sums cached for the same
// file state.
func (c *Cache) Store(path string, info fs.FileInfo, sums map[string]string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(checksumsBucket)
		k := key(path)
		e, found := get(b, k)
		if !found || !e.matches(info) {
			e = entry{Size: info.Size(), MTime: info.ModTime().UnixNano(), Sums: map[string]string{}}
		}
		for alg, s := range sums {
			e.Sums[alg] = s
		}
		encoded, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(k, encoded)
	})
}

// Len returns the number of cached files.
func (c *Cache) Len() (n int) {
	c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(checksumsBucket).Stats().KeyN
		return nil
	})
	return
}
