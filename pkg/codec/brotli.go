package codec

import (
	"io"

	"github.com/andybalholm/brotli"
)

type brotliCodec struct{}

func (brotliCodec) Name() string      { return "brotli" }
func (brotliCodec) Extension() string { return ".br" }

func (brotliCodec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return brotli.NewWriterLevel(w, scaleLevel(level, brotli.BestSpeed, brotli.BestCompression)), nil
}

func (brotliCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
