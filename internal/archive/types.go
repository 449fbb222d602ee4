package archive

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"arcx/pkg/codec"
)

// DefaultWorkers is the pool size used when Options.Workers is unset.
const DefaultWorkers = 4

// Options tunes a run. The zero value is usable: four workers, the default
// codec, no observer, no error log, discarded logs.
type Options struct {
	Workers    int
	Codec      codec.Codec
	OnProgress func(Progress)
	ErrorLog   io.Writer
	Logger     *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Codec == nil {
		o.Codec = codec.Default()
	}
	return o
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Progress is a snapshot delivered to Options.OnProgress after each finished
// unit. Advisory only; the run never blocks on the observer's behalf beyond
// the callback itself.
type Progress struct {
	Completed int
	Total     int
	Failed    int
	Elapsed   time.Duration
}

// Job is one unit of work: a single regular file under the source root.
type Job struct {
	Path string // absolute path on disk
	Rel  string // slash-separated path relative to the root
}

// Result is what a worker reports for one unit. Exactly one of Record and
// Failure is set.
type Result struct {
	Rel     string
	Record  *FileRecord
	Failure *ErrorRecord
}

func failure(rel string, kind ErrorKind, err error) Result {
	return Result{Rel: rel, Failure: &ErrorRecord{Path: rel, Kind: kind, Detail: err.Error()}}
}
