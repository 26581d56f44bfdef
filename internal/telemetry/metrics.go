package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus метрики движка.
//
// Все методы записи безопасны при nil receiver: компоненты,
// созданные без метрик (например, в тестах), работают без изменений.
type Metrics struct {
	// RunsTotal — количество завершённых runs по workflow и статусу.
	RunsTotal *prometheus.CounterVec

	// RunDuration — длительность run в секундах.
	RunDuration *prometheus.HistogramVec

	// StepsTotal — количество обработанных шагов по статусу.
	StepsTotal *prometheus.CounterVec

	// StepDuration — длительность выполнения шага в секундах.
	StepDuration *prometheus.HistogramVec

	// StepRetries — количество повторных попыток (попытки после первой).
	StepRetries *prometheus.CounterVec

	// SchedulerTicks — количество тиков планировщика.
	SchedulerTicks prometheus.Counter
}

// NewMetrics создаёт и регистрирует метрики в переданном Registerer.
// Для production используется prometheus.DefaultRegisterer,
// для тестов — prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_runs_total",
			Help: "Total completed runs by workflow and status",
		}, []string{"workflow", "status"}),

		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cascade_run_duration_seconds",
			Help:    "Run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"workflow"}),

		StepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_steps_total",
			Help: "Total processed steps by workflow and status",
		}, []string{"workflow", "status"}),

		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cascade_step_duration_seconds",
			Help:    "Step duration in seconds including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"workflow", "step"}),

		StepRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_step_retries_total",
			Help: "Total retry attempts after the first one",
		}, []string{"workflow", "step"}),

		SchedulerTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "cascade_scheduler_ticks_total",
			Help: "Total scheduler ticks",
		}),
	}
}

// ObserveRun записывает метрики завершённого run.
func (m *Metrics) ObserveRun(workflow string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}

	status := "failed"
	if success {
		status = "succeeded"
	}

	m.RunsTotal.WithLabelValues(workflow, status).Inc()
	m.RunDuration.WithLabelValues(workflow).Observe(elapsed.Seconds())
}

// ObserveStep записывает метрики обработанного шага.
func (m *Metrics) ObserveStep(workflow, step, status string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.StepsTotal.WithLabelValues(workflow, status).Inc()
	m.StepDuration.WithLabelValues(workflow, step).Observe(elapsed.Seconds())
}

// CountRetry записывает повторную попытку шага.
func (m *Metrics) CountRetry(workflow, step string) {
	if m == nil {
		return
	}
	m.StepRetries.WithLabelValues(workflow, step).Inc()
}

// CountTick записывает тик планировщика.
func (m *Metrics) CountTick() {
	if m == nil {
		return
	}
	m.SchedulerTicks.Inc()
}
