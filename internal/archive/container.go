package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// writeContainer assembles destFile from the manifest and the staged blobs
// under stageRoot. The manifest member goes in first, deflated; file members
// are stored as-is since their content is already compressed.
func writeContainer(destFile string, m *Manifest, stageRoot, ext string) (err error) {
	out, err := os.Create(destFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	defer func() {
		if cerr := zw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	payload, err := m.encode()
	if err != nil {
		return err
	}

	mw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     ManifestMemberName,
		Method:   zip.Deflate,
		Modified: m.Created,
	})
	if err != nil {
		return err
	}
	if _, err := mw.Write(payload); err != nil {
		return err
	}

	for _, rec := range m.Files {
		if err := copyMember(zw, stageRoot, rec, ext, m.Created); err != nil {
			return err
		}
	}
	return nil
}

func copyMember(zw *zip.Writer, stageRoot string, rec FileRecord, ext string, modified time.Time) error {
	src, err := os.Open(filepath.Join(stageRoot, filepath.FromSlash(rec.Path)+ext))
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     rec.Path + ext,
		Method:   zip.Store,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// readManifest locates and decodes the manifest member of an open container.
func readManifest(zr *zip.Reader) (*Manifest, error) {
	for _, f := range zr.File {
		if f.Name != ManifestMemberName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormatMismatch, err)
		}
		defer rc.Close()
		return decodeManifest(rc)
	}
	return nil, fmt.Errorf("%w: no %s member", ErrFormatMismatch, ManifestMemberName)
}
