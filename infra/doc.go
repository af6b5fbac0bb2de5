// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB metrics sinks and the MQTT result publisher.
// These packages depend only on the interfaces defined in the core
// packages and register themselves in the core registries.
package infra
