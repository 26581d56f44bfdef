package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/Cascade/internal/mq"
)

// ArchiverConfig — конфигурация архиватора. Нулевые значения
// заменяются значениями по умолчанию.
type ArchiverConfig struct {
	// Conn — соединение с RabbitMQ.
	Conn *mq.Connection

	// Repo — репозиторий архива.
	Repo *RunRepo

	// Logger — логгер. nil — slog.Default().
	Logger *slog.Logger

	// Prefetch — окно предварительной загрузки consumer'а.
	Prefetch int
}

// Archiver потребляет события run.completed и сохраняет отчёты в архив.
//
// Доставка сообщений at-least-once, поэтому обработка идемпотентна:
// дубликат run ID подтверждается и пропускается. Сообщения, которые
// не удастся обработать никогда (битый payload), уходят в DLQ;
// временные ошибки БД возвращают сообщение в очередь.
type Archiver struct {
	repo     *RunRepo
	logger   *slog.Logger
	consumer *mq.Consumer
}

// NewArchiver создаёт новый Archiver.
func NewArchiver(cfg ArchiverConfig) *Archiver {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &Archiver{
		repo:   cfg.Repo,
		logger: cfg.Logger,
	}
	a.consumer = mq.NewConsumer(cfg.Conn, cfg.Logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueRunsArchive),
		Handler:  a.handle,
		Prefetch: cfg.Prefetch,
	})

	return a
}

// Run запускает потребление. Блокирует до отмены контекста.
func (a *Archiver) Run(ctx context.Context) error {
	a.logger.Info("archiver started", "queue", mq.QueueRunsArchive)
	return a.consumer.Start(ctx)
}

// Stop останавливает архиватор.
func (a *Archiver) Stop() {
	a.consumer.Stop()
}

// handle обрабатывает одно событие run.completed.
func (a *Archiver) handle(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.RunCompletedPayload](&d.Message)
	if err != nil {
		return fmt.Errorf("%w: parse run.completed payload: %v", mq.ErrDrop, err)
	}

	run, steps, err := recordsFromPayload(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", mq.ErrDrop, err)
	}

	if err := a.repo.SaveReport(ctx, run, steps); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			a.logger.Info("run already archived", "run_id", run.ID)
			return nil
		}
		return fmt.Errorf("save report: %w", err)
	}

	a.logger.Info("run archived",
		"run_id", run.ID,
		"workflow", run.Workflow,
		"success", run.Success,
		"steps", len(steps),
	)

	return nil
}
