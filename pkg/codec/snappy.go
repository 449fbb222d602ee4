package codec

import (
	"io"

	"github.com/golang/snappy"
)

// snappyCodec has no level knob; the level argument is accepted and ignored.
type snappyCodec struct{}

func (snappyCodec) Name() string      { return "snappy" }
func (snappyCodec) Extension() string { return ".sz" }

func (snappyCodec) NewWriter(w io.Writer, _ int) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}

func (snappyCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(r)), nil
}
