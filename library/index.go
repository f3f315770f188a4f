package library

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/consts"
	"github.com/RKrahl/photoidx/lazy"
	"github.com/RKrahl/photoidx/logging"
)

// DefaultFilename is the name of the index file inside the photo
// directory.
const DefaultFilename = ".index.yaml"

// Index is the ordered collection of items of a photo directory. An
// Index bound to a file holds a shared lock on it until Close.
type Index struct {
	root  string
	items *lazy.List[*Item]

	path string
	file *os.File
	lock *flock.Flock
}

func newIndex(root string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	idx := &Index{root: abs, items: lazy.Of[*Item]()}
	runtime.SetFinalizer(idx, func(idx *Index) { idx.Close() })
	return idx, nil
}

// New returns an empty index rooted at dir.
func New(dir string) (*Index, error) {
	return newIndex(dir)
}

// Open reads the index file at path, which may also be the photo
// directory.
func Open(ctx context.Context, path string) (*Index, error) {
	idx, err := newIndex(".")
	if err != nil {
		return nil, err
	}
	if err := idx.Read(ctx, path); err != nil {
		return nil, err
	}
	return idx, nil
}

// Create returns a new index of the photos in dir. Items are only built
// when they are accessed.
func Create(ctx context.Context, dir string, opts ScanOptions) (*Index, error) {
	idx, err := newIndex(dir)
	if err != nil {
		return nil, err
	}
	if err := idx.ReadDirectory(ctx, dir, opts); err != nil {
		return nil, err
	}
	return idx, nil
}

// Root is the absolute directory item filenames are relative to.
func (idx *Index) Root() string {
	return idx.root
}

// Path of the bound index file, empty if none.
func (idx *Index) Path() string {
	return idx.path
}

// ReadDirectory replaces the items by the photos in dir.
func (idx *Index) ReadDirectory(ctx context.Context, dir string, opts ScanOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	names, err := listPhotos(idx.root, dir, nil)
	if err != nil {
		return err
	}
	logging.From(ctx).Debug("Listed directory",
		zap.String("dir", dir),
		zap.Int("photos", len(names)),
		zap.Array("checksums", logging.Strings(opts.Checksums)))
	idx.items = lazy.New(scanProducer(ctx, idx.root, names, opts))
	return nil
}

// ExtendDirectory appends items for the photos in dir, which is the root
// or one of its subdirectories, that are not in the index yet.
func (idx *Index) ExtendDirectory(ctx context.Context, dir string, opts ScanOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	known := map[string]bool{}
	for _, item := range idx.items.All() {
		known[item.Filename] = true
	}
	if err := idx.items.Err(); err != nil {
		return err
	}
	names, err := listPhotos(idx.root, dir, known)
	if err != nil {
		return err
	}
	logging.From(ctx).Debug("Extending index", zap.String("dir", dir), zap.Int("new", len(names)))
	next := scanProducer(ctx, idx.root, names, opts)
	var added []*Item
	for {
		item, err := next()
		if errors.Is(err, lazy.Done) {
			break
		}
		if err != nil {
			return err
		}
		added = append(added, item)
	}
	idx.items.Extend(lazy.FromSlice(added))
	return nil
}

func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		abs = filepath.Join(abs, DefaultFilename)
	}
	return abs, nil
}

// Read replaces the items by the content of the index file at path and
// binds the index to it under a shared lock.
func (idx *Index) Read(ctx context.Context, path string) error {
	target, err := resolvePath(path)
	if err != nil {
		return err
	}
	log := logging.From(ctx).With(zap.String("path", target))
	if err := idx.Close(); err != nil {
		log.Warn("Failed to release previous index file", zap.Error(err))
	}
	f, err := os.OpenFile(target, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	l, err := tryLock(target, false)
	if err != nil {
		f.Close()
		return err
	}
	items, err := decodeItems(ctx, f)
	if err != nil {
		l.Unlock()
		f.Close()
		return fmt.Errorf("failed to read %s: %w", target, err)
	}
	idx.bind(target, f, l)
	idx.items = lazy.Of(items...)
	log.Debug("Read index", zap.Int("items", len(items)))
	return nil
}

func (idx *Index) bind(target string, f *os.File, l *flock.Flock) {
	idx.path = target
	idx.file = f
	idx.lock = l
	idx.root = filepath.Dir(target)
}

// Write stores all items in the index file at path. An empty path
// writes to the bound file, or the default file in the root. The file
// is locked exclusively while writing and stays locked shared after.
func (idx *Index) Write(ctx context.Context, path string) error {
	all, err := idx.materialize()
	if err != nil {
		return err
	}
	data, err := encodeItems(all)
	if err != nil {
		return err
	}
	target := idx.path
	if path != "" || idx.file == nil {
		if path == "" {
			path = filepath.Join(idx.root, DefaultFilename)
		}
		if target, err = resolvePath(path); err != nil {
			return err
		}
	}
	log := logging.From(ctx).With(zap.String("path", target))
	if idx.file != nil && target == idx.path {
		if err := upgrade(idx.lock); err != nil {
			return err
		}
	} else {
		f, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE, 0666)
		if err != nil {
			return fmt.Errorf("failed to open index: %w", err)
		}
		l, err := tryLock(target, true)
		if err != nil {
			f.Close()
			return err
		}
		if err := idx.Close(); err != nil {
			log.Warn("Failed to release previous index file", zap.Error(err))
		}
		idx.bind(target, f, l)
	}
	werr := writeAll(idx.file, data)
	if err := downgrade(idx.lock); err != nil {
		log.Warn("Failed to return to shared lock", zap.Error(err))
	}
	if werr != nil {
		return fmt.Errorf("failed to write %s: %w", target, werr)
	}
	log.Debug("Wrote index", zap.Int("items", len(all)))
	return nil
}

func writeAll(f *os.File, data []byte) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return err
	}
	return f.Sync()
}

// Close releases the lock and the index file. It may be called more
// than once.
func (idx *Index) Close() error {
	var lerr, ferr error
	if idx.lock != nil {
		lerr = idx.lock.Unlock()
		idx.lock = nil
	}
	if idx.file != nil {
		ferr = idx.file.Close()
		idx.file = nil
	}
	idx.path = ""
	return errors.Join(lerr, ferr)
}

func (idx *Index) materialize() ([]*Item, error) {
	n, err := idx.items.Len()
	if err != nil {
		return nil, err
	}
	return idx.items.Slice(0, n)
}

func (idx *Index) Get(i int) (*Item, error) {
	return idx.items.Get(i)
}

func (idx *Index) Set(i int, item *Item) error {
	return idx.items.Set(i, item)
}

func (idx *Index) Delete(i int) error {
	return idx.items.Delete(i)
}

func (idx *Index) Insert(i int, item *Item) error {
	return idx.items.Insert(i, item)
}

func (idx *Index) Append(item *Item) error {
	return idx.items.Append(item)
}

// IndexOf returns the position of item, compared by identity.
func (idx *Index) IndexOf(item *Item) (int, error) {
	return idx.items.Index(item, 0, -1)
}

func (idx *Index) Len() (int, error) {
	return idx.items.Len()
}

// Pulled returns the number of items built so far.
func (idx *Index) Pulled() int {
	return idx.items.Pulled()
}

// All walks the items in order, building them as needed. Check Err
// after the iteration.
func (idx *Index) All() iter.Seq2[int, *Item] {
	return idx.items.All()
}

func (idx *Index) Items() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for _, item := range idx.items.All() {
			if !yield(item) {
				return
			}
		}
	}
}

// Filter yields the items matching pred together with their position.
func (idx *Index) Filter(pred func(*Item) bool) iter.Seq2[int, *Item] {
	return func(yield func(int, *Item) bool) {
		for i, item := range idx.items.All() {
			if pred(item) && !yield(i, item) {
				return
			}
		}
	}
}

// Err reports the error that stopped building items, if any.
func (idx *Index) Err() error {
	return idx.items.Err()
}

// Lookup returns the item with the given filename.
func (idx *Index) Lookup(filename string) (*Item, error) {
	for _, item := range idx.items.All() {
		if item.Filename == filename {
			return item, nil
		}
	}
	if err := idx.items.Err(); err != nil {
		return nil, err
	}
	return nil, NotFound(filename)
}

// Move puts the item at position from at position to. Negative positions
// count from the end and to is where the item ends up.
func (idx *Index) Move(from, to int) error {
	n, err := idx.items.Len()
	if err != nil {
		return err
	}
	if from < 0 {
		from += n
	}
	if to < 0 {
		to += n
	}
	if from < 0 || from >= n || to < 0 || to >= n {
		return lazy.ErrIndexRange
	}
	item, err := idx.items.Get(from)
	if err != nil {
		return err
	}
	if err := idx.items.Delete(from); err != nil {
		return err
	}
	return idx.items.Insert(to, item)
}

// SortByDate orders the items by creation date. The sort is stable and
// undated items go last in either order.
func (idx *Index) SortByDate(order consts.SortOrder) error {
	all, err := idx.materialize()
	if err != nil {
		return err
	}
	slices.SortStableFunc(all, func(a, b *Item) int {
		switch {
		case a.CreateDate == nil && b.CreateDate == nil:
			return 0
		case a.CreateDate == nil:
			return 1
		case b.CreateDate == nil:
			return -1
		}
		c := a.CreateDate.Compare(*b.CreateDate)
		if order == consts.Descending {
			return -c
		}
		return c
	})
	idx.items = lazy.Of(all...)
	return nil
}
