package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Levels orders the frame compression levels from fastest to densest.
// The shared scale indexes into this slice.
var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

type lz4Codec struct{}

func (lz4Codec) Name() string      { return "lz4" }
func (lz4Codec) Extension() string { return ".lz4" }

func (lz4Codec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	idx := scaleLevel(level, 0, len(lz4Levels)-1)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[idx])); err != nil {
		return nil, err
	}
	return zw, nil
}

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
