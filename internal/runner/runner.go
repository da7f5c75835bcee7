package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/rs/zerolog"
)

// Report accumulates per-stage timings for one batch run, plus a latency
// histogram over individual bulk writes.
type Report struct {
	RunID     string
	startedAt time.Time
	hist      *hdrhistogram.Histogram
	stages    []Stage
}

type Stage struct {
	Name     string
	Duration time.Duration
	Err      error
}

func New(runID string) *Report {
	return &Report{
		RunID:     runID,
		startedAt: time.Now(),
		hist:      hdrhistogram.New(1, 10000000000, 3),
	}
}

// Stage times fn and records its outcome. The error is returned unchanged
// so callers keep their own control flow.
func (r *Report) Stage(name string, fn func() error) error {
	began := time.Now()
	err := fn()
	r.stages = append(r.stages, Stage{Name: name, Duration: time.Since(began), Err: err})
	return err
}

// ObserveBatch records one bulk-write latency.
func (r *Report) ObserveBatch(d time.Duration) {
	r.hist.RecordValue(d.Nanoseconds())
}

func (r *Report) Errors() int {
	n := 0
	for _, s := range r.stages {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Log writes the run summary: wall time per stage, total time, and the
// batch-write latency percentiles.
func (r *Report) Log(log zerolog.Logger) {
	for _, s := range r.stages {
		evt := log.Info()
		if s.Err != nil {
			evt = log.Error().Err(s.Err)
		}
		evt.Str("stage", s.Name).Dur("duration", s.Duration).Msg("stage finished")
	}
	log.Info().
		Dur("total_time", time.Since(r.startedAt)).
		Dur("batch_p95", time.Duration(r.hist.ValueAtQuantile(95))).
		Dur("batch_p99", time.Duration(r.hist.ValueAtQuantile(99))).
		Int("stage_errors", r.Errors()).
		Msg("run complete")
}
