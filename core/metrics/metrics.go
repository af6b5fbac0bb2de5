package metrics

import (
	"time"

	"github.com/kilianp07/arbitrage/core/model"
)

// MetricsSink records per-window optimisation results.
type MetricsSink interface {
	RecordWindowResult(res model.WindowResult) error
}

// GenerationEvent is a sampled snapshot of a population's fitness.
type GenerationEvent struct {
	RunID      string
	Window     int
	Generation int
	Best       float64
	Mean       float64
	Worst      float64
	StdDev     float64
	Time       time.Time
}

// GenerationRecorder records genetic algorithm progress.
type GenerationRecorder interface {
	RecordGeneration(ev GenerationEvent) error
}

// RunSummary aggregates a finished run.
type RunSummary struct {
	RunID       string
	Windows     int
	Failed      int
	TotalProfit float64
	Duration    time.Duration
	Time        time.Time
}

// RunRecorder records the summary of a completed run.
type RunRecorder interface {
	RecordRun(sum RunSummary) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordWindowResult(model.WindowResult) error { return nil }
func (NopSink) RecordGeneration(GenerationEvent) error      { return nil }
func (NopSink) RecordRun(RunSummary) error                  { return nil }
