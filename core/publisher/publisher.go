// Package publisher defines where finished window results are pushed once a
// window has been optimised. Implementations register themselves by type
// name and are selected through the `publisher` configuration section.
package publisher

import (
	"context"

	"github.com/kilianp07/arbitrage/core/factory"
	"github.com/kilianp07/arbitrage/core/model"
)

// ResultPublisher delivers window results to an external system.
type ResultPublisher interface {
	Publish(ctx context.Context, res model.WindowResult) error
	Close() error
}

// NopPublisher discards every result.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.WindowResult) error { return nil }
func (NopPublisher) Close() error                                      { return nil }

var registry = factory.NewRegistry[ResultPublisher]()

// Register adds a publisher factory identified by name.
func Register(name string, f factory.Factory[ResultPublisher]) error {
	return registry.Register(name, f)
}

// New builds the configured publisher. An empty type yields a NopPublisher.
func New(cfg factory.ModuleConfig) (ResultPublisher, error) {
	if cfg.Type == "" || cfg.Type == "nop" {
		return NopPublisher{}, nil
	}
	return registry.Create(cfg)
}
