package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/config"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/report"
	"github.com/shaiso/Cascade/internal/steps"
	"github.com/shaiso/Cascade/internal/telemetry"
	"github.com/shaiso/Cascade/internal/workflow"
)

// defaultTick — период проверки расписаний.
const defaultTick = time.Second

// job — запись расписания с её состоянием.
type job struct {
	entry config.ScheduleEntry
	wf    *workflow.Workflow

	// next и disabled меняются только циклом Run.
	next     time.Time
	disabled bool

	// running пересекает горутины запусков.
	running atomic.Bool
}

// Scheduler выполняет workflow файлы по расписаниям из конфигурации.
//
// Расписания живут в памяти процесса: состояние next не переживает
// рестарт, после старта каждая запись ждёт своего первого срока.
type Scheduler struct {
	jobs      []*job
	registry  *steps.Registry
	base      engine.Config
	seed      map[string]any
	tick      time.Duration
	publisher *mq.Publisher
	logger    *slog.Logger
	metrics   *telemetry.Metrics

	wg sync.WaitGroup
}

// Config — конфигурация Scheduler. Пустые поля получают значения
// по умолчанию.
type Config struct {
	// Entries — записи расписаний (секция scheduler.entries).
	Entries []config.ScheduleEntry

	// Registry — реестр типов шагов. Пустое значение — DefaultRegistry.
	Registry *steps.Registry

	// Base — базовая конфигурация движка. Name, Logger и Metrics
	// подставляются на каждый запуск.
	Base engine.Config

	// Seed — общий начальный контекст запусков (секция context).
	Seed map[string]any

	// Tick — период проверки расписаний (default: 1s).
	Tick time.Duration

	// Publisher публикует события run.started / run.completed.
	// Опционален.
	Publisher *mq.Publisher

	// Logger — логгер. Пустое значение — slog.Default().
	Logger *slog.Logger

	// Metrics — метрики Prometheus. Опциональны.
	Metrics *telemetry.Metrics
}

// New создаёт Scheduler: загружает и проверяет workflow файлы всех
// включённых записей и вычисляет их первые сроки.
//
// Любая негодная запись — битый файл, непроходящая валидация,
// некорректное cron выражение — фатальна: ошибки расписаний должны
// обнаруживаться при старте процесса.
func New(cfg Config) (*Scheduler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = steps.DefaultRegistry()
	}

	tick := cfg.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	s := &Scheduler{
		registry:  registry,
		base:      cfg.Base,
		seed:      cfg.Seed,
		tick:      tick,
		publisher: cfg.Publisher,
		logger:    logger,
		metrics:   cfg.Metrics,
	}

	now := time.Now()
	for i, entry := range cfg.Entries {
		if !entry.IsEnabled() {
			logger.Debug("schedule entry disabled", "workflow", entry.Workflow)
			continue
		}

		wf, err := workflow.LoadFile(entry.Workflow)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i, err)
		}
		if err := workflow.Validate(wf, registry); err != nil {
			return nil, fmt.Errorf("schedule entry %d (%s): %w", i, entry.Workflow, err)
		}

		next, err := NextDue(entry, now)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d (%s): %w", i, entry.Workflow, err)
		}

		s.jobs = append(s.jobs, &job{entry: entry, wf: wf, next: next})
	}

	return s, nil
}

// Run запускает цикл планировщика и блокируется до отмены контекста.
// Перед возвратом дожидается завершения начатых запусков.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "entries", len(s.jobs), "tick", s.tick)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.Tick(ctx, now)
		case <-ctx.Done():
			s.logger.Info("scheduler stopping")
			s.wg.Wait()
			return nil
		}
	}
}

// Tick выполняет один проход: запускает workflow записей, чей срок
// наступил, и вычисляет их следующие сроки.
//
// Записи изолированы друг от друга: каждый запуск идёт в отдельной
// горутине, и затянувшийся workflow не задерживает остальные. Пока
// предыдущий запуск записи не завершился, её новые сроки пропускаются.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	s.metrics.CountTick()

	for _, j := range s.jobs {
		if j.disabled || now.Before(j.next) {
			continue
		}

		s.advance(j, now)

		if !j.running.CompareAndSwap(false, true) {
			s.logger.Warn("previous run still in progress, skipping occurrence",
				"workflow", j.wf.Name,
				"file", j.entry.Workflow,
			)
			continue
		}

		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			defer j.running.Store(false)
			s.runJob(ctx, j)
		}(j)
	}
}

// advance вычисляет следующий срок записи. Запись с невычислимым
// сроком выключается до перезапуска процесса.
func (s *Scheduler) advance(j *job, now time.Time) {
	next, err := NextDue(j.entry, now)
	if err != nil {
		s.logger.Error("failed to compute next due, entry disabled",
			"workflow", j.wf.Name,
			"file", j.entry.Workflow,
			"error", err,
		)
		j.disabled = true
		return
	}

	j.next = next
}

// runJob выполняет один запуск записи: собирает Runner, выполняет
// workflow и публикует отчёт.
func (s *Scheduler) runJob(ctx context.Context, j *job) {
	runID := uuid.New()
	logger := telemetry.WithRunID(telemetry.WithWorkflow(s.logger, j.wf.Name), runID.String())

	base := s.base
	base.Name = j.wf.Name
	base.Logger = logger
	base.Metrics = s.metrics

	runner, err := workflow.Build(j.wf, s.registry, base)
	if err != nil {
		logger.Error("failed to build workflow", "file", j.entry.Workflow, "error", err)
		return
	}

	rc := engine.NewRunContext(j.wf.Seed(s.seed, j.entry.Vars))
	startedAt := time.Now()

	logger.Info("scheduled run started", "file", j.entry.Workflow)

	if s.publisher != nil {
		started := mq.RunStartedPayload{
			RunID:      runID,
			Workflow:   j.wf.Name,
			TotalSteps: j.wf.EnabledSteps(),
			StartedAt:  startedAt,
		}
		if err := s.publisher.PublishRunStarted(ctx, started); err != nil {
			logger.Warn("failed to publish run.started", "error", err)
		}
	}

	results, err := runner.Execute(ctx, rc)
	if err != nil {
		// Прерванный запуск не публикуется: его отчёт неполон.
		logger.Warn("scheduled run interrupted", "error", err)
		return
	}

	summary := report.Summarize(results)

	if s.publisher != nil {
		completed := mq.RunCompletedPayload{
			RunID:      runID,
			Workflow:   j.wf.Name,
			Success:    summary.Success,
			Summary:    summary.ToMap(),
			Results:    report.ResultMaps(results),
			Context:    rc.Snapshot(),
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
		}
		if err := s.publisher.PublishRunCompleted(ctx, completed); err != nil {
			logger.Warn("failed to publish run.completed", "error", err)
		}
	}

	logger.Info("scheduled run completed",
		"success", summary.Success,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"took", summary.Duration,
	)
}
