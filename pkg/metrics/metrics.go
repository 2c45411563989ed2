package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gochan components.
type Registry struct {
	// Channel Metrics
	ChannelSends      *prometheus.CounterVec
	ChannelReceives   *prometheus.CounterVec
	ChannelSendErrors *prometheus.CounterVec
	ChannelRecvErrors *prometheus.CounterVec
	ChannelBlocked    *prometheus.CounterVec
	ChannelDepth      *prometheus.GaugeVec
	ChannelCapacity   *prometheus.GaugeVec
	ChannelClosed     *prometheus.GaugeVec

	// Worker Pool Metrics
	WorkerPoolSize        *prometheus.GaugeVec
	WorkerPoolActive      *prometheus.GaugeVec
	WorkerPoolQueued      *prometheus.GaugeVec
	TasksExecuted         *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by gochan components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Channel Metrics
		ChannelSends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "sends_total",
				Help:      "Total number of values accepted by the channel",
			},
			[]string{"channel_name"},
		),

		ChannelReceives: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "receives_total",
				Help:      "Total number of values delivered to receivers",
			},
			[]string{"channel_name"},
		),

		ChannelSendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "send_errors_total",
				Help:      "Total number of failed send operations",
			},
			[]string{"channel_name", "reason"},
		),

		ChannelRecvErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "receive_errors_total",
				Help:      "Total number of failed receive operations",
			},
			[]string{"channel_name", "reason"},
		),

		ChannelBlocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "blocked_total",
				Help:      "Total number of operations that had to park",
			},
			[]string{"channel_name"},
		),

		ChannelDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "depth",
				Help:      "Current number of buffered values",
			},
			[]string{"channel_name"},
		),

		ChannelCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "capacity",
				Help:      "Fixed channel capacity",
			},
			[]string{"channel_name"},
		),

		ChannelClosed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "closed",
				Help:      "1 when the channel has been closed",
			},
			[]string{"channel_name"},
		),

		// Worker Pool Metrics
		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Current worker pool size",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of active workers",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of queued tasks",
			},
			[]string{"pool_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "workerpool",
				Name:      "tasks_executed_total",
				Help:      "Total number of tasks executed",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "workerpool",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that failed",
			},
			[]string{"pool_name"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gochan",
				Subsystem: "workerpool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),
	}
}
