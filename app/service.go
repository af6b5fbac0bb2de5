// Package app wires ingestion, windowing, the optimizer and the result
// outputs into one batch run.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/arbitrage/config"
	"github.com/kilianp07/arbitrage/core/ingest"
	coremetrics "github.com/kilianp07/arbitrage/core/metrics"
	"github.com/kilianp07/arbitrage/core/model"
	"github.com/kilianp07/arbitrage/core/optimizer"
	"github.com/kilianp07/arbitrage/core/publisher"
	"github.com/kilianp07/arbitrage/core/window"
	"github.com/kilianp07/arbitrage/infra/logger"
	"github.com/kilianp07/arbitrage/infra/metrics"
	"github.com/kilianp07/arbitrage/internal/eventbus"
	"github.com/kilianp07/arbitrage/pkg/export"

	// registers the mqtt result publisher
	_ "github.com/kilianp07/arbitrage/infra/mqtt"
)

// Service optimises every window of a price series.
type Service struct {
	cfg  *config.Config
	sink coremetrics.MetricsSink
	pub  publisher.ResultPublisher
	bus  *eventbus.TypedBus[Progress]
	log  logger.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithSink replaces the metrics sink built from the configuration.
func WithSink(s coremetrics.MetricsSink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithPublisher replaces the publisher built from the configuration.
func WithPublisher(p publisher.ResultPublisher) Option {
	return func(svc *Service) { svc.pub = p }
}

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) { svc.log = l }
}

// RunResult summarises a completed run.
type RunResult struct {
	RunID       string
	Windows     []model.WindowResult
	TotalProfit float64
	Failed      int
	Duration    time.Duration
}

// New creates a Service from the configuration. Metrics sinks and the
// publisher are instantiated from their registries unless overridden.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{
		cfg: cfg,
		bus: eventbus.NewTyped[Progress](64),
		log: logger.New("service"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.pub == nil {
		pub, err := publisher.New(cfg.Publisher)
		if err != nil {
			return nil, fmt.Errorf("publisher: %w", err)
		}
		svc.pub = pub
	}
	return svc, nil
}

// Progress exposes the bus on which window progress is published.
func (s *Service) Progress() *eventbus.TypedBus[Progress] { return s.bus }

// Run loads the configured input, optimises every window and writes the
// report. Ingestion errors abort the run before any window is optimised.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	in := s.cfg.Input
	prices, err := ingest.Load(in.Path, in.Format, in.ExtractOptions())
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	s.log.Infof("loaded %d prices from %s", len(prices), in.Path)

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		promCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := metrics.StartPromServer(promCtx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	res, err := s.Optimize(ctx, prices)
	if err != nil {
		return nil, err
	}
	if err := export.WriteFile(s.cfg.Report.Path, s.cfg.Report.Format, res.Windows); err != nil {
		return res, fmt.Errorf("write report: %w", err)
	}
	s.log.Infof("report written to %s", s.cfg.Report.Path)
	return res, nil
}

// Optimize splits prices into windows and runs one Engine per window, up to
// run.workers at a time. A window whose configuration is invalid is recorded
// as failed and the others continue.
func (s *Service) Optimize(ctx context.Context, prices model.PriceSeries) (*RunResult, error) {
	windows, err := window.Split(prices, s.cfg.Window)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	log := s.log.With(map[string]any{"run_id": runID})

	var baseSeed uint64
	if s.cfg.Run.Seed != nil {
		baseSeed = *s.cfg.Run.Seed
	} else {
		baseSeed = rand.Uint64()
	}
	log.Infof("optimising %d windows with seed %d", len(windows), baseSeed)

	workers := s.cfg.Run.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	results := make([]model.WindowResult, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, w := range windows {
		g.Go(func() error {
			s.bus.Publish(Progress{RunID: runID, Window: w.Index, Windows: len(windows), Stage: StageStarted, Time: time.Now()})
			res, err := s.optimizeWindow(gctx, runID, baseSeed+uint64(w.Index), w)
			if err != nil {
				return err
			}
			results[i] = res
			s.deliver(gctx, log, res, len(windows))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &RunResult{RunID: runID, Windows: results, Duration: time.Since(start)}
	for _, r := range results {
		if r.Failed() {
			run.Failed++
			continue
		}
		run.TotalProfit += r.Profit
	}
	if rec, ok := s.sink.(coremetrics.RunRecorder); ok {
		sum := coremetrics.RunSummary{
			RunID:       runID,
			Windows:     len(results),
			Failed:      run.Failed,
			TotalProfit: run.TotalProfit,
			Duration:    run.Duration,
			Time:        time.Now(),
		}
		if err := rec.RecordRun(sum); err != nil {
			log.Warnf("record run: %v", err)
		}
	}
	log.Infof("run finished: total profit %.3f over %d windows (%d failed) in %s",
		run.TotalProfit, len(results), run.Failed, run.Duration)
	return run, nil
}

func (s *Service) optimizeWindow(ctx context.Context, runID string, seed uint64, w window.Window) (model.WindowResult, error) {
	started := time.Now()
	res := model.WindowResult{RunID: runID, Index: w.Index, Start: w.Start, Length: len(w.Prices), Time: started}

	opts := []optimizer.Option{optimizer.WithSeed(seed)}
	if obs := s.generationObserver(runID, w.Index); obs != nil {
		opts = append(opts, optimizer.WithObserver(obs))
	}
	eng, err := optimizer.New(s.cfg.Optimizer, w.Prices, opts...)
	if err != nil {
		if errors.Is(err, optimizer.ErrInvalidConfiguration) {
			res.Err = err.Error()
			return res, nil
		}
		return res, err
	}
	out, err := eng.Run(ctx)
	if err != nil {
		return res, err
	}

	res.Profit = out.Profit
	res.Buys = out.Buys
	res.Sells = out.Sells
	res.Generations = s.cfg.Optimizer.Generations
	res.Schedule = out.Best
	res.Transcript = out.Transcript
	if base, err := optimizer.Baseline(len(w.Prices), s.cfg.Optimizer.RequiredBuySell); err == nil {
		res.Baseline = eng.Simulator().Profit(base, w.Prices)
	}
	res.Duration = time.Since(started)
	return res, nil
}

// generationObserver samples engine statistics into the sink when it
// records generations and sampling is enabled.
func (s *Service) generationObserver(runID string, win int) optimizer.Observer {
	interval := s.cfg.Metrics.GenerationInterval
	rec, ok := s.sink.(coremetrics.GenerationRecorder)
	if interval <= 0 || !ok {
		return nil
	}
	return optimizer.ObserverFunc(func(st optimizer.GenerationStats) {
		if st.Generation%interval != 0 {
			return
		}
		ev := coremetrics.GenerationEvent{
			RunID:      runID,
			Window:     win,
			Generation: st.Generation,
			Best:       st.Best,
			Mean:       st.Mean,
			Worst:      st.Worst,
			StdDev:     st.StdDev,
			Time:       time.Now(),
		}
		if err := rec.RecordGeneration(ev); err != nil {
			s.log.Warnf("record generation %d of window %d: %v", st.Generation, win, err)
		}
	})
}

// deliver hands a finished window to the sink, the publisher and the bus.
// Output failures are logged and never fail the run.
func (s *Service) deliver(ctx context.Context, log logger.Logger, res model.WindowResult, windows int) {
	p := Progress{RunID: res.RunID, Window: res.Index, Windows: windows, Profit: res.Profit, Time: time.Now()}
	if res.Failed() {
		log.Warnf("window %d failed: %s", res.Index, res.Err)
		p.Stage, p.Err = StageFailed, res.Err
	} else {
		log.Debugf("window %d: profit %.3f (baseline %.3f), %d buys, %d sells in %s",
			res.Index, res.Profit, res.Baseline, res.Buys, res.Sells, res.Duration)
		p.Stage = StageFinished
	}
	if err := s.sink.RecordWindowResult(res); err != nil {
		log.Warnf("record window %d: %v", res.Index, err)
	}
	if err := s.pub.Publish(ctx, res); err != nil {
		log.Warnf("publish window %d: %v", res.Index, err)
	}
	s.bus.Publish(p)
}

// Close releases the publisher and closes the progress bus.
func (s *Service) Close() error {
	s.bus.Close()
	return s.pub.Close()
}
