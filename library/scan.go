package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/domain"
	"github.com/RKrahl/photoidx/lazy"
	"github.com/RKrahl/photoidx/logging"
)

const photoSuffix = ".jpg"

// ChecksumCache remembers checksums of files that did not change since
// they were last hashed.
type ChecksumCache interface {
	Lookup(path string, info fs.FileInfo, algs []string) (map[string]string, bool)
	Store(path string, info fs.FileInfo, sums map[string]string) error
}

// ScanOptions controls how items are created for new files.
type ScanOptions struct {
	// Checksums lists the algorithms to compute, nil computes none.
	Checksums []string
	// Metadata defaults to domain.ExifReader.
	Metadata domain.MetadataReader
	Cache    ChecksumCache
}

func (opts ScanOptions) Validate() error {
	return ValidateChecksums(opts.Checksums)
}

func (opts ScanOptions) checksums(ctx context.Context, path string) (map[string]string, error) {
	if len(opts.Checksums) == 0 {
		return map[string]string{}, nil
	}
	if opts.Cache == nil {
		return Checksums(path, opts.Checksums)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if sums, found := opts.Cache.Lookup(path, info, opts.Checksums); found {
		return sums, nil
	}
	sums, err := Checksums(path, opts.Checksums)
	if err != nil {
		return nil, err
	}
	if err := opts.Cache.Store(path, info, sums); err != nil {
		logging.From(ctx).Debug("Failed to cache checksums", zap.String("path", path), zap.Error(err))
	}
	return sums, nil
}

func fsPath(root, filename string) string {
	return filepath.Join(root, filepath.FromSlash(filename))
}

// listPhotos returns the filenames, relative to root and in name order,
// of the photo files directly in dir that are not known yet.
func listPhotos(root, dir string, known map[string]bool) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("directory %s is not below the index root %s", dir, root)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) != photoSuffix || !isRegular(abs, e) {
			continue
		}
		name := path.Join(filepath.ToSlash(rel), e.Name())
		if known[name] {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func isRegular(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		return err == nil && info.Mode().IsRegular()
	}
	return e.Type().IsRegular()
}

// scanProducer creates the items for names one at a time, so files are
// only read when the item is consulted.
func scanProducer(ctx context.Context, root string, names []string, opts ScanOptions) lazy.Producer[*Item] {
	i := 0
	return func() (*Item, error) {
		if i >= len(names) {
			return nil, lazy.Done
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := names[i]
		i++
		item, err := NewItem(ctx, root, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		return item, nil
	}
}
