package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/arbitrage/core/metrics"
	"github.com/kilianp07/arbitrage/core/model"
)

const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// PromSink records optimisation results in Prometheus metrics.
type PromSink struct {
	windows     *prometheus.CounterVec
	profit      *prometheus.GaugeVec
	duration    prometheus.Histogram
	bestFitness *prometheus.GaugeVec
	runProfit   prometheus.Gauge
}

// NewPromSink registers the optimiser metrics on the default registerer.
// The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	windows, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arbitrage_windows_total",
		Help: "Number of optimised windows by outcome",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}
	profit, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arbitrage_window_profit",
		Help: "Profit of the best schedule found for a window",
	}, []string{"window"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbitrage_window_duration_seconds",
		Help:    "Wall time spent optimising one window",
		Buckets: prometheus.DefBuckets,
	}))
	if err != nil {
		return nil, err
	}
	best, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arbitrage_generation_best_fitness",
		Help: "Best fitness of the last sampled generation",
	}, []string{"window"}))
	if err != nil {
		return nil, err
	}
	runProfit, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arbitrage_run_total_profit",
		Help: "Summed profit of the last completed run",
	}))
	if err != nil {
		return nil, err
	}
	return &PromSink{
		windows:     windows,
		profit:      profit,
		duration:    duration,
		bestFitness: best,
		runProfit:   runProfit,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordWindowResult updates the window counters, profit and duration.
func (s *PromSink) RecordWindowResult(res model.WindowResult) error {
	if res.Failed() {
		s.windows.WithLabelValues(statusFailed).Inc()
		return nil
	}
	s.windows.WithLabelValues(statusOK).Inc()
	s.profit.WithLabelValues(strconv.Itoa(res.Index)).Set(res.Profit)
	s.duration.Observe(res.Duration.Seconds())
	return nil
}

// RecordGeneration sets the best fitness gauge of the event's window.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	s.bestFitness.WithLabelValues(strconv.Itoa(ev.Window)).Set(ev.Best)
	return nil
}

// RecordRun publishes the total profit of the run.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	s.runProfit.Set(sum.TotalProfit)
	return nil
}
