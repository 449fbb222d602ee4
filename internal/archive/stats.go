package archive

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"arcx/pkg/asset"
)

// CategoryStats accumulates totals for one asset category.
type CategoryStats struct {
	Count      int
	Original   int64
	Compressed int64
}

// Stats summarizes a run. TotalFiles counts successful units only; failures
// are tracked separately and never contribute to byte totals.
type Stats struct {
	TotalFiles      int
	FailedFiles     int
	OriginalBytes   int64
	CompressedBytes int64
	ByCategory      map[asset.Category]CategoryStats
	Elapsed         time.Duration
}

func newStats() *Stats {
	s := &Stats{ByCategory: make(map[asset.Category]CategoryStats, len(asset.Categories()))}
	for _, category := range asset.Categories() {
		s.ByCategory[category] = CategoryStats{}
	}
	return s
}

func (s *Stats) addSuccess(category asset.Category, original, compressed int64) {
	s.TotalFiles++
	s.OriginalBytes += original
	s.CompressedBytes += compressed

	cs := s.ByCategory[category]
	cs.Count++
	cs.Original += original
	cs.Compressed += compressed
	s.ByCategory[category] = cs
}

func (s *Stats) addFailure() {
	s.FailedFiles++
}

// Ratio returns compressed bytes over original bytes, or zero when nothing
// was processed.
func (s *Stats) Ratio() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.CompressedBytes) / float64(s.OriginalBytes)
}

// Saved returns the byte delta between original and compressed totals.
func (s *Stats) Saved() int64 {
	return s.OriginalBytes - s.CompressedBytes
}

// tally aggregates worker results. It runs on a single goroutine, so the
// stats, record list, error list and error-log writer need no locking.
type tally struct {
	stats   *Stats
	records []FileRecord
	errs    []ErrorRecord

	total     int
	completed int
	started   time.Time
	opts      Options
	log       zerolog.Logger
}

func newTally(total int, opts Options) *tally {
	return &tally{
		stats:   newStats(),
		records: []FileRecord{},
		total:   total,
		started: time.Now(),
		opts:    opts,
		log:     opts.logger(),
	}
}

// seedFailure records a failure discovered before the workers start, such as
// an unreadable directory during the walk. It does not advance progress.
func (t *tally) seedFailure(rec ErrorRecord) {
	t.stats.addFailure()
	t.errs = append(t.errs, rec)
	t.logFailure(rec)
}

func (t *tally) run(results <-chan Result, done chan<- struct{}) {
	defer close(done)
	for res := range results {
		t.consume(res)
	}
	t.stats.Elapsed = time.Since(t.started)
}

func (t *tally) consume(res Result) {
	t.completed++

	switch {
	case res.Failure != nil:
		t.stats.addFailure()
		t.errs = append(t.errs, *res.Failure)
		t.logFailure(*res.Failure)
	case res.Record != nil:
		t.stats.addSuccess(res.Record.Category, res.Record.OriginalSize, res.Record.CompressedSize)
		t.records = append(t.records, *res.Record)
	}

	if t.opts.OnProgress != nil {
		t.opts.OnProgress(Progress{
			Completed: t.completed,
			Total:     t.total,
			Failed:    t.stats.FailedFiles,
			Elapsed:   time.Since(t.started),
		})
	}
}

func (t *tally) logFailure(rec ErrorRecord) {
	if t.opts.ErrorLog != nil {
		fmt.Fprintln(t.opts.ErrorLog, rec.String())
	}
	t.log.Warn().Str("path", rec.Path).Str("kind", string(rec.Kind)).Msg(rec.Detail)
}

// sortedRecords returns the collected records ordered by path, so manifests
// and containers come out deterministic regardless of completion order.
func (t *tally) sortedRecords() []FileRecord {
	records := t.records
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records
}
