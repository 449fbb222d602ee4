package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"

	"arcx/pkg/asset"
	"arcx/pkg/codec"
)

// CompressTree compresses every regular file under srcRoot into destRoot,
// mirroring the directory layout with one compressed file per source file
// plus a manifest.json describing the run. Per-file failures are recorded
// and skipped; the returned error is reserved for whole-run problems.
func CompressTree(srcRoot, destRoot string, policy asset.Policy, opts Options) (*Stats, []ErrorRecord, error) {
	opts = opts.withDefaults()

	absRoot, err := checkSourceRoot(srcRoot)
	if err != nil {
		return nil, nil, err
	}

	manifest, stats, errs, err := compressTree(absRoot, destRoot, policy, opts)
	if err != nil {
		return stats, errs, err
	}

	if err := writeSidecar(destRoot, manifest); err != nil {
		return stats, errs, err
	}
	return stats, errs, nil
}

// compressTree runs the pipeline: discover units up front, fan them out to
// workers over a jobs channel, and funnel every outcome through the results
// channel into a single collecting goroutine. All workers join before the
// manifest is assembled; every discovered unit runs to completion.
func compressTree(absRoot, destRoot string, policy asset.Policy, opts Options) (*Manifest, *Stats, []ErrorRecord, error) {
	log := opts.logger()

	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return nil, nil, nil, err
	}

	units, walkErrs, err := discover(absRoot)
	if err != nil {
		return nil, nil, nil, err
	}

	log.Info().
		Str("source", absRoot).
		Str("dest", destRoot).
		Int("files", len(units)).
		Int("workers", opts.Workers).
		Str("codec", opts.Codec.Name()).
		Msg("compressing tree")

	jobs := make(chan Job)
	results := make(chan Result)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- compressUnit(job, destRoot, policy, opts)
			}
		}()
	}

	tal := newTally(len(units), opts)
	for _, rec := range walkErrs {
		tal.seedFailure(rec)
	}
	done := make(chan struct{})
	go tal.run(results, done)

	go func() {
		defer close(jobs)
		for _, job := range units {
			jobs <- job
		}
	}()

	wg.Wait()
	close(results)
	<-done

	manifest := newManifest(policy, opts.Codec.Name(), opts.Workers)
	manifest.Files = tal.sortedRecords()

	log.Info().
		Int("compressed", tal.stats.TotalFiles).
		Int("failed", tal.stats.FailedFiles).
		Int64("original_bytes", tal.stats.OriginalBytes).
		Int64("compressed_bytes", tal.stats.CompressedBytes).
		Dur("elapsed", tal.stats.Elapsed).
		Msg("tree compression complete")

	return manifest, tal.stats, tal.errs, nil
}

func checkSourceRoot(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, root)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return filepath.Abs(root)
}

// discover walks the tree before any work starts, so the unit count is
// exact. Unreadable subdirectories are recorded and skipped; only a failure
// on the root itself aborts.
func discover(absRoot string) ([]Job, []ErrorRecord, error) {
	var units []Job
	var walkErrs []ErrorRecord

	fsys := os.DirFS(absRoot)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == "." {
				return walkErr
			}
			walkErrs = append(walkErrs, newErrorRecord(path, classifyError(walkErr, KindSourceNotFound), walkErr))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		units = append(units, Job{Path: filepath.Join(absRoot, path), Rel: path})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return units, walkErrs, nil
}

func compressUnit(job Job, destRoot string, policy asset.Policy, opts Options) Result {
	category := asset.Classify(job.Rel)
	level := policy.Resolve(category)

	src, err := os.Open(job.Path)
	if err != nil {
		return failure(job.Rel, classifyError(err, KindSourceNotFound), err)
	}
	defer src.Close()

	destPath := filepath.Join(destRoot, filepath.FromSlash(job.Rel)) + opts.Codec.Extension()
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return failure(job.Rel, classifyError(err, KindCodecFailure), err)
	}

	original, compressed, checksum, err := compressFile(src, destPath, opts.Codec, level)
	if err != nil {
		os.Remove(destPath)
		return failure(job.Rel, classifyError(err, KindCodecFailure), err)
	}

	return Result{Rel: job.Rel, Record: &FileRecord{
		Path:             job.Rel,
		Category:         category,
		CompressionLevel: level,
		OriginalSize:     original,
		CompressedSize:   compressed,
		Checksum:         checksum,
	}}
}

// compressFile streams src through the codec into destPath, hashing and
// counting the original bytes in the same pass.
func compressFile(src io.Reader, destPath string, c codec.Codec, level int) (original, compressed int64, checksum string, err error) {
	dest, err := os.Create(destPath)
	if err != nil {
		return 0, 0, "", err
	}

	counter := &countingWriter{w: dest}
	zw, err := c.NewWriter(counter, level)
	if err != nil {
		dest.Close()
		return 0, 0, "", err
	}

	hasher := xxhash.New()
	original, err = io.Copy(zw, io.TeeReader(src, hasher))
	if err != nil {
		zw.Close()
		dest.Close()
		return 0, 0, "", err
	}
	if err := zw.Close(); err != nil {
		dest.Close()
		return 0, 0, "", err
	}
	if err := dest.Close(); err != nil {
		return 0, 0, "", err
	}

	return original, counter.n, formatChecksum(hasher.Sum64()), nil
}

func formatChecksum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
