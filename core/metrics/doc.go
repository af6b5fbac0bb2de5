// Package metrics defines the observability contract of an optimisation run.
//
// A MetricsSink records one model.WindowResult per optimised window. Sinks
// may additionally implement GenerationRecorder to receive sampled genetic
// algorithm statistics, and RunRecorder to receive the summary written when
// a run completes. Concrete sinks live in infra/metrics and register
// themselves in the sink registry under a type name so that they can be
// selected from configuration:
//
//	metrics:
//	  sinks:
//	    - type: prometheus
//	    - type: influx
//	      conf:
//	        url: http://localhost:8086
//	        token: secret
//	        org: energy
//	        bucket: arbitrage
package metrics
