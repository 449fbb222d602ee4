package codec

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// s2Codec exposes the s2 format's three effort modes as bands on the shared
// scale: the low third runs the default encoder, the middle runs better
// compression, the top runs best.
type s2Codec struct{}

func (s2Codec) Name() string      { return "s2" }
func (s2Codec) Extension() string { return ".s2" }

func (s2Codec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	var opts []s2.WriterOption
	switch {
	case clampScale(level) >= 16:
		opts = append(opts, s2.WriterBestCompression())
	case clampScale(level) >= 8:
		opts = append(opts, s2.WriterBetterCompression())
	}
	return s2.NewWriter(w, opts...), nil
}

func (s2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}
