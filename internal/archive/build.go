package archive

import (
	"os"

	"arcx/pkg/asset"
)

// Build compresses srcRoot into a single container file at destFile. The
// compressed tree is staged in a scratch directory that is removed on every
// exit path. Per-file failures leave the file out of the container and the
// manifest; only whole-run problems return an error.
func Build(srcRoot, destFile string, policy asset.Policy, opts Options) (*Manifest, *Stats, []ErrorRecord, error) {
	opts = opts.withDefaults()
	log := opts.logger()

	absRoot, err := checkSourceRoot(srcRoot)
	if err != nil {
		return nil, nil, nil, err
	}

	scratch, err := os.MkdirTemp("", "arcx-build-*")
	if err != nil {
		return nil, nil, nil, err
	}
	defer os.RemoveAll(scratch)

	manifest, stats, errs, err := compressTree(absRoot, scratch, policy, opts)
	if err != nil {
		return nil, stats, errs, err
	}

	if err := writeContainer(destFile, manifest, scratch, opts.Codec.Extension()); err != nil {
		os.Remove(destFile)
		return nil, stats, errs, err
	}

	log.Info().Str("archive", destFile).Int("members", len(manifest.Files)).Msg("container written")
	return manifest, stats, errs, nil
}
