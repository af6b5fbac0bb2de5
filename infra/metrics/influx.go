package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/arbitrage/core/metrics"
	"github.com/kilianp07/arbitrage/core/model"
	"github.com/kilianp07/arbitrage/infra/logger"
)

// InfluxSink writes optimisation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails so that a run never blocks on telemetry.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordWindowResult writes one window_result point.
func (s *InfluxSink) RecordWindowResult(res model.WindowResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, windowPoint(res))
}

// RecordGeneration writes one generation_stats point.
func (s *InfluxSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("generation_stats").
		AddTag("run_id", ev.RunID).
		AddTag("window", strconv.Itoa(ev.Window)).
		AddField("generation", ev.Generation).
		AddField("best", round3(ev.Best)).
		AddField("mean", round3(ev.Mean)).
		AddField("worst", round3(ev.Worst)).
		AddField("std_dev", round3(ev.StdDev)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes the run_summary point.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", sum.RunID).
		AddField("windows", sum.Windows).
		AddField("failed", sum.Failed).
		AddField("total_profit", round3(sum.TotalProfit)).
		AddField("duration_ms", round3(sum.Duration.Seconds()*1000)).
		SetTime(sum.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func windowPoint(res model.WindowResult) *write.Point {
	status := statusOK
	if res.Failed() {
		status = statusFailed
	}
	p := write.NewPointWithMeasurement("window_result").
		AddTag("run_id", res.RunID).
		AddTag("window", strconv.Itoa(res.Index)).
		AddTag("status", status).
		AddField("start", res.Start).
		AddField("length", res.Length).
		AddField("profit", round3(res.Profit)).
		AddField("baseline", round3(res.Baseline)).
		AddField("buys", res.Buys).
		AddField("sells", res.Sells).
		AddField("duration_ms", round3(res.Duration.Seconds()*1000)).
		SetTime(res.Time)
	if res.Failed() {
		p.AddField("error", res.Err)
	}
	return p
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
