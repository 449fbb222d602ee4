package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zip"
	"github.com/sourcegraph/conc/pool"

	"arcx/pkg/codec"
)

// Extract reconstructs the tree described by archiveFile's manifest under
// destRoot. Each member decodes independently; integrity problems (size or
// checksum drift) are recorded per file and leave the rest of the run
// untouched. A missing or malformed container is fatal.
func Extract(archiveFile, destRoot string, opts Options) (*Stats, []ErrorRecord, error) {
	opts = opts.withDefaults()
	log := opts.logger()

	zr, err := zip.OpenReader(archiveFile)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, archiveFile)
		case errors.Is(err, zip.ErrFormat):
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrFormatMismatch, archiveFile, err)
		default:
			return nil, nil, err
		}
	}
	defer zr.Close()

	manifest, err := readManifest(&zr.Reader)
	if err != nil {
		return nil, nil, err
	}

	c, err := codec.ForName(manifest.Codec)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormatMismatch, err)
	}

	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return nil, nil, err
	}

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}

	log.Info().
		Str("archive", archiveFile).
		Str("dest", destRoot).
		Int("files", len(manifest.Files)).
		Int("workers", opts.Workers).
		Str("codec", c.Name()).
		Msg("extracting archive")

	results := make(chan Result)
	tal := newTally(len(manifest.Files), opts)
	done := make(chan struct{})
	go tal.run(results, done)

	p := pool.New().WithMaxGoroutines(opts.Workers)
	for _, rec := range manifest.Files {
		p.Go(func() {
			results <- extractMember(members, rec, destRoot, c)
		})
	}
	p.Wait()
	close(results)
	<-done

	log.Info().
		Int("extracted", tal.stats.TotalFiles).
		Int("failed", tal.stats.FailedFiles).
		Dur("elapsed", tal.stats.Elapsed).
		Msg("extraction complete")

	return tal.stats, tal.errs, nil
}

func extractMember(members map[string]*zip.File, rec FileRecord, destRoot string, c codec.Codec) Result {
	memberName := rec.Path + c.Extension()
	member, ok := members[memberName]
	if !ok {
		return failure(rec.Path, KindSourceNotFound, fmt.Errorf("member %q missing from archive", memberName))
	}

	destPath := filepath.Join(destRoot, filepath.FromSlash(rec.Path))
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return failure(rec.Path, classifyError(err, KindCodecFailure), err)
	}

	written, checksum, err := decodeMember(member, destPath, c)
	if err != nil {
		os.Remove(destPath)
		return failure(rec.Path, classifyError(err, KindCodecFailure), err)
	}

	// Size and checksum drift keep the file on disk but mark the unit
	// failed; the caller decides what to do with a partial tree.
	if written != rec.OriginalSize {
		return failure(rec.Path, KindIntegrityMismatch,
			fmt.Errorf("expected %d bytes, got %d", rec.OriginalSize, written))
	}
	if rec.Checksum != "" && checksum != rec.Checksum {
		return failure(rec.Path, KindIntegrityMismatch,
			fmt.Errorf("checksum %s does not match manifest %s", checksum, rec.Checksum))
	}

	return Result{Rel: rec.Path, Record: &rec}
}

func decodeMember(member *zip.File, destPath string, c codec.Codec) (int64, string, error) {
	mr, err := member.Open()
	if err != nil {
		return 0, "", err
	}
	defer mr.Close()

	zrd, err := c.NewReader(mr)
	if err != nil {
		return 0, "", err
	}
	defer zrd.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return 0, "", err
	}

	hasher := xxhash.New()
	written, err := io.Copy(dest, io.TeeReader(zrd, hasher))
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, "", err
	}
	return written, formatChecksum(hasher.Sum64()), nil
}
