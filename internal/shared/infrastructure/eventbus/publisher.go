package eventbus

import (
	"context"
	"errors"
	"log/slog"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// FanoutPublisher publishes every message to all targets. Each target gets
// the message even when an earlier one fails; errors are joined.
type FanoutPublisher struct {
	targets []Publisher
	logger  *slog.Logger
}

// NewFanoutPublisher creates a publisher fanning out to the given targets.
func NewFanoutPublisher(logger *slog.Logger, targets ...Publisher) *FanoutPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FanoutPublisher{targets: targets, logger: logger}
}

// Publish sends the message to every target.
func (p *FanoutPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var errs []error
	for _, target := range p.targets {
		if err := target.Publish(ctx, routingKey, payload); err != nil {
			p.logger.Error("fanout publish failed", "routing_key", routingKey, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every target.
func (p *FanoutPublisher) Close() error {
	var errs []error
	for _, target := range p.targets {
		if err := target.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
