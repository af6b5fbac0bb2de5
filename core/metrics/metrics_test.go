package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/arbitrage/core/factory"
	"github.com/kilianp07/arbitrage/core/model"
)

type recSink struct {
	windows []model.WindowResult
	gens    []GenerationEvent
	runs    []RunSummary
	err     error
}

func (r *recSink) RecordWindowResult(res model.WindowResult) error {
	r.windows = append(r.windows, res)
	return r.err
}

func (r *recSink) RecordGeneration(ev GenerationEvent) error {
	r.gens = append(r.gens, ev)
	return r.err
}

func (r *recSink) RecordRun(sum RunSummary) error {
	r.runs = append(r.runs, sum)
	return r.err
}

type windowOnly struct{ n int }

func (w *windowOnly) RecordWindowResult(model.WindowResult) error {
	w.n++
	return nil
}

func TestMultiSink_FanOut(t *testing.T) {
	a, b := &recSink{}, &windowOnly{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordWindowResult(model.WindowResult{Index: 2, Profit: 4}))
	require.NoError(t, m.RecordGeneration(GenerationEvent{Window: 2, Generation: 10}))
	require.NoError(t, m.RecordRun(RunSummary{Windows: 1}))

	assert.Len(t, a.windows, 1)
	assert.Equal(t, 2, a.windows[0].Index)
	assert.Len(t, a.gens, 1)
	assert.Len(t, a.runs, 1)
	assert.Equal(t, 1, b.n)
}

func TestMultiSink_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recSink{err: boom}
	b := &recSink{}
	m := NewMultiSink(a, b)

	err := m.RecordWindowResult(model.WindowResult{})
	require.ErrorIs(t, err, boom)
	assert.Len(t, b.windows, 1, "later sinks still receive the event")
}

func TestNewMetricsSink(t *testing.T) {
	s, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	require.NoError(t, RegisterMetricsSink("test-rec", func(map[string]any) (MetricsSink, error) {
		return &recSink{}, nil
	}))

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-rec"}})
	require.NoError(t, err)
	assert.IsType(t, &recSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-rec"}, {Type: "test-rec"}})
	require.NoError(t, err)
	multi, ok := s.(*MultiSink)
	require.True(t, ok)
	assert.Len(t, multi.Sinks, 2)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{GenerationInterval: -1}.Validate())
	assert.Error(t, Config{Sinks: []factory.ModuleConfig{{}}}.Validate())
}
