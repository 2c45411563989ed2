package workerpool

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gochan/pkg/channel"
	"github.com/vnykmshr/gochan/pkg/metrics"
)

// MetricsPool wraps a worker Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry *metrics.Registry
}

// NewWithMetrics creates a new worker pool with metrics enabled.
func NewWithMetrics(workerCount, queueSize int, name string) (Pool, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{
		WorkerCount: workerCount,
		QueueSize:   queueSize,
	}, name, config)
}

// NewWithConfigAndMetrics creates a new worker pool with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Pool, error) {
	if !metricsConfig.Enabled {
		return NewWithConfig(config)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	mp := &MetricsPool{
		name:     name,
		registry: registry,
	}

	userOnTaskComplete := config.OnTaskComplete
	config.OnTaskComplete = func(workerID int, result Result) {
		registry.TasksExecuted.WithLabelValues(name).Inc()
		if result.Error != nil {
			registry.TasksFailed.WithLabelValues(name).Inc()
		}
		registry.TaskExecutionDuration.WithLabelValues(name).Observe(result.Duration.Seconds())
		if userOnTaskComplete != nil {
			userOnTaskComplete(workerID, result)
		}
	}

	basePool, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	mp.pool = basePool
	mp.updateMetrics()

	return mp, nil
}

// updateMetrics updates the current state metrics.
func (mp *MetricsPool) updateMetrics() {
	mp.registry.WorkerPoolSize.WithLabelValues(mp.name).Set(float64(mp.pool.Size()))
	mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(mp.pool.ActiveWorkers()))
	mp.registry.WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(mp.pool.QueueSize()))
}

// Submit implements Pool.Submit.
func (mp *MetricsPool) Submit(task Task) error {
	err := mp.pool.Submit(task)
	mp.updateMetrics()
	return err
}

// SubmitWithContext implements Pool.SubmitWithContext.
func (mp *MetricsPool) SubmitWithContext(ctx context.Context, task Task) error {
	err := mp.pool.SubmitWithContext(ctx, task)
	mp.updateMetrics()
	return err
}

// Results implements Pool.Results.
func (mp *MetricsPool) Results() channel.Channel[Result] {
	return mp.pool.Results()
}

// Shutdown implements Pool.Shutdown.
func (mp *MetricsPool) Shutdown() <-chan struct{} {
	done := mp.pool.Shutdown()
	mp.updateMetrics()
	return done
}

// Size implements Pool.Size.
func (mp *MetricsPool) Size() int {
	return mp.pool.Size()
}

// QueueSize implements Pool.QueueSize.
func (mp *MetricsPool) QueueSize() int {
	return mp.pool.QueueSize()
}

// ActiveWorkers implements Pool.ActiveWorkers.
func (mp *MetricsPool) ActiveWorkers() int {
	return mp.pool.ActiveWorkers()
}

// TotalSubmitted implements Pool.TotalSubmitted.
func (mp *MetricsPool) TotalSubmitted() int64 {
	return mp.pool.TotalSubmitted()
}

// TotalCompleted implements Pool.TotalCompleted.
func (mp *MetricsPool) TotalCompleted() int64 {
	return mp.pool.TotalCompleted()
}
