// Package codec provides streaming compression codecs behind a common
// interface. Every codec accepts levels on a shared 1-22 scale and maps
// them onto its native range, so callers tune aggressiveness without
// knowing which algorithm is underneath.
package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Codec is a named compression algorithm that can wrap writers and readers.
type Codec interface {
	// Name returns the codec's registry name, e.g. "zstd".
	Name() string
	// Extension returns the file suffix for data this codec produced,
	// including the leading dot, e.g. ".zst".
	Extension() string
	// NewWriter wraps w so that writes are compressed at the given level
	// on the shared 1-22 scale. The returned writer must be closed to
	// flush trailing frames.
	NewWriter(w io.Writer, level int) (io.WriteCloser, error)
	// NewReader wraps r so that reads return decompressed data.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// DefaultName is the codec used when no codec is configured.
const DefaultName = "zstd"

var (
	byName      = map[string]Codec{}
	byExtension = map[string]Codec{}
)

func register(c Codec) {
	byName[c.Name()] = c
	byExtension[c.Extension()] = c
}

func init() {
	register(zstdCodec{})
	register(gzipCodec{})
	register(lz4Codec{})
	register(s2Codec{})
	register(snappyCodec{})
	register(brotliCodec{})
}

// ForName returns the codec registered under name.
func ForName(name string) (Codec, error) {
	c, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// ForExtension returns the codec that produces files with the given suffix.
// The leading dot is optional.
func ForExtension(ext string) (Codec, error) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c, ok := byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("no codec registered for extension %q", ext)
	}
	return c, nil
}

// Default returns the zstd codec.
func Default() Codec {
	return byName[DefaultName]
}

// Names returns the registered codec names, sorted.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
