package archive

import (
	"io/fs"
	"os"
	"sort"
	"time"

	"arcx/pkg/asset"
)

// ScanEntry is one file found by Scan.
type ScanEntry struct {
	Path     string
	Category asset.Category
	Size     int64
}

// Scan inventories a tree without compressing anything: every regular file
// is classified and sized. Stats carries counts and original sizes only.
// Unreadable entries are recorded and skipped.
func Scan(root string) ([]ScanEntry, *Stats, []ErrorRecord, error) {
	absRoot, err := checkSourceRoot(root)
	if err != nil {
		return nil, nil, nil, err
	}

	started := time.Now()
	stats := newStats()
	var entries []ScanEntry
	var errs []ErrorRecord

	fsys := os.DirFS(absRoot)
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == "." {
				return walkErr
			}
			stats.addFailure()
			errs = append(errs, newErrorRecord(path, classifyError(walkErr, KindSourceNotFound), walkErr))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			stats.addFailure()
			errs = append(errs, newErrorRecord(path, classifyError(err, KindSourceNotFound), err))
			return nil
		}

		category := asset.Classify(path)
		entries = append(entries, ScanEntry{Path: path, Category: category, Size: info.Size()})
		stats.addSuccess(category, info.Size(), 0)
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	stats.Elapsed = time.Since(started)
	return entries, stats, errs, nil
}
