package archive

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"arcx/pkg/asset"
	"arcx/pkg/codec"
)

func buildSample(t *testing.T, tree map[string]string, opts Options) string {
	t.Helper()

	src := t.TempDir()
	writeTree(t, src, tree)
	archivePath := filepath.Join(t.TempDir(), "assets.arcx")

	_, _, errs, err := Build(src, archivePath, asset.DefaultPolicy(), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected error records: %v", errs)
	}
	return archivePath
}

func TestBuildExtractRoundTrip(t *testing.T) {
	tree := sampleTree()
	archivePath := buildSample(t, tree, Options{})

	dest := t.TempDir()
	stats, errs, err := Extract(archivePath, dest, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected error records: %v", errs)
	}
	if stats.TotalFiles != len(tree) || stats.FailedFiles != 0 {
		t.Fatalf("expected %d extracted files, got %d (%d failed)", len(tree), stats.TotalFiles, stats.FailedFiles)
	}

	for rel, content := range tree {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(got) != content {
			t.Fatalf("%s: extracted bytes differ from source", rel)
		}
	}
}

func TestBuildContainerShape(t *testing.T) {
	tree := sampleTree()
	archivePath := buildSample(t, tree, Options{})

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open container: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != len(tree)+1 {
		t.Fatalf("expected %d members, got %d", len(tree)+1, len(zr.File))
	}
	first := zr.File[0]
	if first.Name != ManifestMemberName {
		t.Fatalf("expected manifest first, got %q", first.Name)
	}
	if first.Method != zip.Deflate {
		t.Fatalf("manifest member must be deflated, got method %d", first.Method)
	}

	manifest, err := readManifest(&zr.Reader)
	if err != nil {
		t.Fatalf("readManifest: %v", err)
	}
	if len(manifest.Files) != len(tree) {
		t.Fatalf("expected %d manifest records, got %d", len(tree), len(manifest.Files))
	}

	memberNames := make(map[string]uint16, len(zr.File))
	for _, f := range zr.File[1:] {
		memberNames[f.Name] = f.Method
	}
	for _, rec := range manifest.Files {
		method, ok := memberNames[rec.Path+".zst"]
		if !ok {
			t.Fatalf("no member for record %s", rec.Path)
		}
		if method != zip.Store {
			t.Fatalf("%s: file members must be stored, got method %d", rec.Path, method)
		}
		delete(memberNames, rec.Path+".zst")
	}
	if len(memberNames) != 0 {
		t.Fatalf("extraneous members: %v", memberNames)
	}
}

func TestBuildEmptyTree(t *testing.T) {
	archivePath := buildSample(t, map[string]string{}, Options{})

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open container: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != ManifestMemberName {
		t.Fatalf("expected a manifest-only container, got %d members", len(zr.File))
	}
	zr.Close()

	stats, errs, err := Extract(archivePath, t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.TotalFiles != 0 || stats.FailedFiles != 0 || len(errs) != 0 {
		t.Fatalf("expected an empty extraction, got %+v (%v)", stats, errs)
	}
}

func TestBuildRecordsFailuresButFinishes(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission failures are invisible to root")
	}

	src := t.TempDir()
	tree := sampleTree()
	writeTree(t, src, tree)
	if err := os.Chmod(filepath.Join(src, "notes.txt"), 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "partial.arcx")
	manifest, stats, errs, err := Build(src, archivePath, asset.DefaultPolicy(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.FailedFiles != 1 || len(errs) != 1 {
		t.Fatalf("expected one recorded failure, got %d (%v)", stats.FailedFiles, errs)
	}
	if len(manifest.Files) != len(tree)-1 {
		t.Fatalf("expected %d records, got %d", len(tree)-1, len(manifest.Files))
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open container: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != len(tree) {
		t.Fatalf("expected %d members (manifest + %d files), got %d", len(tree), len(tree)-1, len(zr.File))
	}
}

func TestExtractMissingArchive(t *testing.T) {
	_, _, err := Extract(filepath.Join(t.TempDir(), "ghost.arcx"), t.TempDir(), Options{})
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestExtractNotAnArchive(t *testing.T) {
	junk := filepath.Join(t.TempDir(), "junk.arcx")
	if err := os.WriteFile(junk, []byte("this is not a container"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err := Extract(junk, t.TempDir(), Options{})
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestExtractNoManifestMember(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.arcx")
	writeRawContainer(t, path, map[string][]byte{"stray.txt.zst": []byte("blob")})

	_, _, err := Extract(path, t.TempDir(), Options{})
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestExtractUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.arcx")
	writeRawContainer(t, path, map[string][]byte{
		ManifestMemberName: []byte(`{"version":"9.9","created":"2026-01-01T00:00:00Z","compression_mode":"automatic","codec":"zstd","workers":4,"files":[]}`),
	})

	_, _, err := Extract(path, t.TempDir(), Options{})
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestExtractUnknownCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exotic.arcx")
	writeRawContainer(t, path, map[string][]byte{
		ManifestMemberName: []byte(`{"version":"1.0","created":"2026-01-01T00:00:00Z","compression_mode":"automatic","codec":"xz","workers":4,"files":[]}`),
	})

	_, _, err := Extract(path, t.TempDir(), Options{})
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestExtractTamperedMemberChecksum(t *testing.T) {
	tree := map[string]string{
		"notes.txt":  "remember the milk\n",
		"sprite.png": strings.Repeat("rgba", 64),
		"theme.ogg":  strings.Repeat("pcm", 64),
	}
	archivePath := buildSample(t, tree, Options{})

	// Same decompressed length as the original, so only the checksum trips.
	tampered := compressBytes(t, codec.Default(), 12, []byte("FORGET THE MILK!!\n"))
	rewriteContainer(t, archivePath, func(name string, data []byte) ([]byte, bool) {
		if name == "notes.txt.zst" {
			return tampered, true
		}
		return data, true
	})

	dest := t.TempDir()
	stats, errs, err := Extract(archivePath, dest, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.TotalFiles != 2 || stats.FailedFiles != 1 {
		t.Fatalf("expected 2 successes and 1 failure, got %d/%d", stats.TotalFiles, stats.FailedFiles)
	}
	if len(errs) != 1 || errs[0].Kind != KindIntegrityMismatch {
		t.Fatalf("expected one integrity_mismatch, got %v", errs)
	}
	if errs[0].Path != "notes.txt" {
		t.Fatalf("expected notes.txt flagged, got %s", errs[0].Path)
	}

	// The suspect file stays on disk for the caller to inspect.
	if _, err := os.Stat(filepath.Join(dest, "notes.txt")); err != nil {
		t.Fatalf("tampered file should remain: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dest, "sprite.png"))
	if err != nil || string(got) != tree["sprite.png"] {
		t.Fatalf("siblings must extract cleanly: %v", err)
	}
}

func TestExtractCorruptedFrame(t *testing.T) {
	tree := map[string]string{
		"notes.txt": strings.Repeat("remember the milk\n", 20),
		"theme.ogg": strings.Repeat("pcm", 64),
	}
	archivePath := buildSample(t, tree, Options{})

	rewriteContainer(t, archivePath, func(name string, data []byte) ([]byte, bool) {
		if name == "notes.txt.zst" {
			flipped := append([]byte{}, data...)
			flipped[len(flipped)/2] ^= 0xff
			return flipped, true
		}
		return data, true
	})

	stats, errs, err := Extract(archivePath, t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.TotalFiles != 1 || stats.FailedFiles != 1 {
		t.Fatalf("expected 1 success and 1 failure, got %d/%d", stats.TotalFiles, stats.FailedFiles)
	}
	if len(errs) != 1 || errs[0].Kind != KindCodecFailure {
		t.Fatalf("expected one codec_failure, got %v", errs)
	}
}

func TestExtractMissingMember(t *testing.T) {
	tree := map[string]string{
		"notes.txt": "remember the milk\n",
		"theme.ogg": strings.Repeat("pcm", 64),
	}
	archivePath := buildSample(t, tree, Options{})

	rewriteContainer(t, archivePath, func(name string, data []byte) ([]byte, bool) {
		return data, name != "theme.ogg.zst"
	})

	dest := t.TempDir()
	stats, errs, err := Extract(archivePath, dest, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.TotalFiles != 1 || stats.FailedFiles != 1 {
		t.Fatalf("expected 1 success and 1 failure, got %d/%d", stats.TotalFiles, stats.FailedFiles)
	}
	if len(errs) != 1 || errs[0].Kind != KindSourceNotFound || errs[0].Path != "theme.ogg" {
		t.Fatalf("expected source_not_found for theme.ogg, got %v", errs)
	}
	if _, err := os.Stat(filepath.Join(dest, "notes.txt")); err != nil {
		t.Fatalf("surviving member must extract: %v", err)
	}
}

func TestExtractWorkerCountsAgree(t *testing.T) {
	archivePath := buildSample(t, sampleTree(), Options{})

	var baseline *Stats
	for _, workers := range []int{1, 2, 8} {
		stats, errs, err := Extract(archivePath, t.TempDir(), Options{Workers: workers})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if len(errs) != 0 {
			t.Fatalf("workers=%d: unexpected error records: %v", workers, errs)
		}
		if baseline == nil {
			baseline = stats
			continue
		}
		if !reflect.DeepEqual(normalizeStats(baseline), normalizeStats(stats)) {
			t.Fatalf("workers=%d: stats diverge: %+v vs %+v", workers, baseline, stats)
		}
	}
}

func TestBuildExtractGzip(t *testing.T) {
	gz, err := codec.ForName("gzip")
	if err != nil {
		t.Fatalf("ForName: %v", err)
	}
	tree := map[string]string{"doc/readme.txt": strings.Repeat("docs ", 200)}
	archivePath := buildSample(t, tree, Options{Codec: gz})

	// The manifest names the codec, so extraction needs no hint.
	dest := t.TempDir()
	if _, _, err := Extract(archivePath, dest, Options{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dest, "doc", "readme.txt"))
	if err != nil || string(got) != tree["doc/readme.txt"] {
		t.Fatalf("gzip round trip failed: %v", err)
	}
}

func TestExtractProgress(t *testing.T) {
	tree := sampleTree()
	archivePath := buildSample(t, tree, Options{})

	var updates []Progress
	_, _, err := Extract(archivePath, t.TempDir(), Options{
		OnProgress: func(p Progress) { updates = append(updates, p) },
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(updates) != len(tree) {
		t.Fatalf("expected %d updates, got %d", len(tree), len(updates))
	}
	last := updates[len(updates)-1]
	if last.Completed != len(tree) || last.Total != len(tree) {
		t.Fatalf("unexpected final update: %+v", last)
	}
}

func compressBytes(t *testing.T, c codec.Codec, level int, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := c.NewWriter(&buf, level)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

// writeRawContainer builds a zip with the given members verbatim, bypassing
// the normal build path.
func writeRawContainer(t *testing.T, path string, members map[string][]byte) {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(out)
	for name, data := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
		if err != nil {
			t.Fatalf("create member %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write member %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

// rewriteContainer rebuilds the container member by member, letting mutate
// replace or drop each one.
func rewriteContainer(t *testing.T, path string, mutate func(name string, data []byte) ([]byte, bool)) {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	type member struct {
		name   string
		method uint16
		data   []byte
	}
	var members []member
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read member %s: %v", f.Name, err)
		}
		newData, keep := mutate(f.Name, data)
		if !keep {
			continue
		}
		members = append(members, member{name: f.Name, method: f.Method, data: newData})
	}
	zr.Close()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(out)
	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.name, Method: m.method, Modified: time.Now()})
		if err != nil {
			t.Fatalf("create member %s: %v", m.name, err)
		}
		if _, err := w.Write(m.data); err != nil {
			t.Fatalf("write member %s: %v", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}
