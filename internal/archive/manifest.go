package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"arcx/pkg/asset"
)

const (
	// ManifestVersion is the container format revision this build writes and
	// the only one it accepts.
	ManifestVersion = "1.0"
	// ManifestMemberName is the name of the manifest member inside a
	// container. It carries no extension so it can never collide with a
	// stored file member, which always ends in the codec's extension.
	ManifestMemberName = "manifest"
	// SidecarName is the manifest file written into the destination root in
	// tree mode.
	SidecarName = "manifest.json"
)

// Compression modes recorded in the manifest.
const (
	ModeAutomatic = "automatic"
	ModeManual    = "manual"
)

// FileRecord describes one archived file.
type FileRecord struct {
	Path             string         `json:"path"`
	Category         asset.Category `json:"category"`
	CompressionLevel int            `json:"compression_level"`
	OriginalSize     int64          `json:"original_size"`
	CompressedSize   int64          `json:"compressed_size"`
	Checksum         string         `json:"checksum,omitempty"`
}

// Manifest is the archive's self-description: how it was produced and what
// it holds. Written once when the run finishes; never updated.
type Manifest struct {
	Version          string       `json:"version"`
	Created          time.Time    `json:"created"`
	CompressionMode  string       `json:"compression_mode"`
	CompressionLevel int          `json:"compression_level,omitempty"`
	Codec            string       `json:"codec"`
	Workers          int          `json:"workers"`
	Files            []FileRecord `json:"files"`
}

func newManifest(policy asset.Policy, codecName string, workers int) *Manifest {
	m := &Manifest{
		Version:         ManifestVersion,
		Created:         time.Now().UTC().Truncate(time.Second),
		CompressionMode: ModeAutomatic,
		Codec:           codecName,
		Workers:         workers,
		Files:           []FileRecord{},
	}
	if policy.Manual() {
		m.CompressionMode = ModeManual
		m.CompressionLevel = policy.Level()
	}
	return m
}

func (m *Manifest) encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func decodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatMismatch, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Version != ManifestVersion {
		return fmt.Errorf("%w: unsupported manifest version %q", ErrFormatMismatch, m.Version)
	}
	if m.CompressionMode != ModeAutomatic && m.CompressionMode != ModeManual {
		return fmt.Errorf("%w: unknown compression mode %q", ErrFormatMismatch, m.CompressionMode)
	}

	seen := make(map[string]struct{}, len(m.Files))
	for _, rec := range m.Files {
		if err := checkMemberPath(rec.Path); err != nil {
			return err
		}
		if _, dup := seen[rec.Path]; dup {
			return fmt.Errorf("%w: duplicate path %q", ErrFormatMismatch, rec.Path)
		}
		seen[rec.Path] = struct{}{}
	}
	return nil
}

// checkMemberPath rejects paths that could escape the destination root when
// joined onto it.
func checkMemberPath(p string) error {
	if p == "" || path.IsAbs(p) || p != path.Clean(p) ||
		p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return fmt.Errorf("%w: unsafe path %q", ErrFormatMismatch, p)
	}
	return nil
}

func writeSidecar(destRoot string, m *Manifest) error {
	payload, err := m.encode()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(destRoot, SidecarName), payload, 0o644)
}
