package channel

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gochan/pkg/metrics"
)

// metricsChannel wraps a Channel with Prometheus metrics collection.
type metricsChannel[T any] struct {
	ch       Channel[T]
	name     string
	registry *metrics.Registry
}

// NewWithMetrics creates a channel of the given capacity with metrics
// enabled under a dedicated Prometheus registry.
func NewWithMetrics[T any](capacity int, name string) (Channel[T], error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics[T](Config{Capacity: capacity}, name, config)
}

// NewWithConfigAndMetrics creates a channel with custom config and metrics.
func NewWithConfigAndMetrics[T any](cfg Config, name string, metricsConfig metrics.Config) (Channel[T], error) {
	if !metricsConfig.Enabled {
		return NewWithConfig[T](cfg)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	// The engine's park hooks feed the blocked counter; everything else is
	// counted around the public operations.
	userOnBlock := cfg.OnBlock
	cfg.OnBlock = func() {
		registry.ChannelBlocked.WithLabelValues(name).Inc()
		if userOnBlock != nil {
			userOnBlock()
		}
	}
	userOnClose := cfg.OnClose
	cfg.OnClose = func() {
		registry.ChannelClosed.WithLabelValues(name).Set(1)
		if userOnClose != nil {
			userOnClose()
		}
	}

	base, err := NewWithConfig[T](cfg)
	if err != nil {
		return nil, err
	}

	registry.ChannelCapacity.WithLabelValues(name).Set(float64(cfg.Capacity))
	registry.ChannelClosed.WithLabelValues(name).Set(0)

	return &metricsChannel[T]{
		ch:       base,
		name:     name,
		registry: registry,
	}, nil
}

func (mc *metricsChannel[T]) errReason(err error) string {
	switch {
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrFull):
		return "full"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

// Send implements Channel.Send.
func (mc *metricsChannel[T]) Send(ctx context.Context, value T) error {
	err := mc.ch.Send(ctx, value)
	if err != nil {
		mc.registry.ChannelSendErrors.WithLabelValues(mc.name, mc.errReason(err)).Inc()
	} else {
		mc.registry.ChannelSends.WithLabelValues(mc.name).Inc()
	}
	mc.registry.ChannelDepth.WithLabelValues(mc.name).Set(float64(mc.ch.Len()))
	return err
}

// TrySend implements Channel.TrySend.
func (mc *metricsChannel[T]) TrySend(value T) error {
	err := mc.ch.TrySend(value)
	if err != nil {
		mc.registry.ChannelSendErrors.WithLabelValues(mc.name, mc.errReason(err)).Inc()
	} else {
		mc.registry.ChannelSends.WithLabelValues(mc.name).Inc()
	}
	mc.registry.ChannelDepth.WithLabelValues(mc.name).Set(float64(mc.ch.Len()))
	return err
}

// Receive implements Channel.Receive.
func (mc *metricsChannel[T]) Receive(ctx context.Context) (T, error) {
	value, err := mc.ch.Receive(ctx)
	if err != nil {
		mc.registry.ChannelRecvErrors.WithLabelValues(mc.name, mc.errReason(err)).Inc()
	} else {
		mc.registry.ChannelReceives.WithLabelValues(mc.name).Inc()
	}
	mc.registry.ChannelDepth.WithLabelValues(mc.name).Set(float64(mc.ch.Len()))
	return value, err
}

// TryReceive implements Channel.TryReceive.
func (mc *metricsChannel[T]) TryReceive() (T, bool, error) {
	value, ok, err := mc.ch.TryReceive()
	if err != nil {
		mc.registry.ChannelRecvErrors.WithLabelValues(mc.name, mc.errReason(err)).Inc()
	} else if ok {
		mc.registry.ChannelReceives.WithLabelValues(mc.name).Inc()
	}
	mc.registry.ChannelDepth.WithLabelValues(mc.name).Set(float64(mc.ch.Len()))
	return value, ok, err
}

// Close implements Channel.Close.
func (mc *metricsChannel[T]) Close() {
	mc.ch.Close()
}

// IsClosed implements Channel.IsClosed.
func (mc *metricsChannel[T]) IsClosed() bool {
	return mc.ch.IsClosed()
}

// Len implements Channel.Len.
func (mc *metricsChannel[T]) Len() int {
	return mc.ch.Len()
}

// Cap implements Channel.Cap.
func (mc *metricsChannel[T]) Cap() int {
	return mc.ch.Cap()
}

// Stats implements Channel.Stats.
func (mc *metricsChannel[T]) Stats() Stats {
	return mc.ch.Stats()
}
