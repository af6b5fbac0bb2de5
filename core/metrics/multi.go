package metrics

import (
	"errors"

	"github.com/kilianp07/arbitrage/core/model"
)

// MultiSink fans events out to several sinks. Every sink is attempted and the
// errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordWindowResult forwards the result to all sinks.
func (m *MultiSink) RecordWindowResult(res model.WindowResult) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordWindowResult(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordGeneration forwards generation events to sinks that support them.
func (m *MultiSink) RecordGeneration(ev GenerationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(GenerationRecorder); ok {
			if err := rec.RecordGeneration(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordRun forwards the run summary to sinks that support it.
func (m *MultiSink) RecordRun(sum RunSummary) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			if err := rec.RecordRun(sum); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
