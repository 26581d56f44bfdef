package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultListLimit — лимит выборки, когда фильтр его не задал.
const defaultListLimit = 50

// RunRepo — репозиторий архива запусков.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// SaveReport сохраняет запуск и все его шаги в одной транзакции.
// Повторное сохранение того же run ID — ErrAlreadyExists.
func (r *RunRepo) SaveReport(ctx context.Context, run *RunRecord, steps []StepRecord) error {
	contextJSON, err := json.Marshal(run.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO runs (id, workflow, success, total_steps, executed_steps,
		                  succeeded, failed, skipped, total_time_sec, context,
		                  started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, query,
		run.ID,
		run.Workflow,
		run.Success,
		run.TotalSteps,
		run.ExecutedSteps,
		run.Succeeded,
		run.Failed,
		run.Skipped,
		run.TotalTimeSec,
		contextJSON,
		run.StartedAt,
		run.FinishedAt,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert run: %w", err)
	}

	for i := range steps {
		if err := insertStep(ctx, tx, &steps[i], createdAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// insertStep вставляет одну строку шага в рамках транзакции.
func insertStep(ctx context.Context, tx pgx.Tx, step *StepRecord, createdAt time.Time) error {
	tagsJSON, err := json.Marshal(step.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	metricsJSON, err := json.Marshal(step.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	metadataJSON, err := json.Marshal(step.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	dataJSON, err := json.Marshal(step.Data)
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	id := step.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO run_steps (id, run_id, position, name, success, message,
		                       skipped, executed, time_taken_sec, attempts,
		                       tags, metrics, metadata, data, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = tx.Exec(ctx, query,
		id,
		step.RunID,
		step.Position,
		step.Name,
		step.Success,
		step.Message,
		step.Skipped,
		step.Executed,
		step.TimeTakenSec,
		step.Attempts,
		tagsJSON,
		metricsJSON,
		metadataJSON,
		dataJSON,
		nullString(step.LastError),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert step %s: %w", step.Name, err)
	}
	return nil
}

// GetByID возвращает запуск по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	query := `
		SELECT id, workflow, success, total_steps, executed_steps,
		       succeeded, failed, skipped, total_time_sec, context,
		       started_at, finished_at, created_at
		FROM runs
		WHERE id = $1
	`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// Filter — параметры выборки запусков.
type Filter struct {
	// Workflow — точное имя процесса. Пустая строка — без фильтра.
	Workflow string

	// Success — фильтр по итогу. nil — без фильтра.
	Success *bool

	// Limit — размер страницы. Ноль — defaultListLimit.
	Limit int

	// Offset — смещение страницы.
	Offset int
}

// List возвращает запуски от новых к старым с фильтрацией.
func (r *RunRepo) List(ctx context.Context, filter Filter) ([]RunRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, workflow, success, total_steps, executed_steps,
		       succeeded, failed, skipped, total_time_sec, context,
		       started_at, finished_at, created_at
		FROM runs
		WHERE ($1::text IS NULL OR workflow = $1)
		  AND ($2::boolean IS NULL OR success = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.Workflow),
		filter.Success,
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListSteps возвращает шаги запуска в порядке отчёта.
func (r *RunRepo) ListSteps(ctx context.Context, runID uuid.UUID) ([]StepRecord, error) {
	query := `
		SELECT id, run_id, position, name, success, message,
		       skipped, executed, time_taken_sec, attempts,
		       tags, metrics, metadata, data, last_error, created_at
		FROM run_steps
		WHERE run_id = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, *step)
	}
	return steps, rows.Err()
}

// Stats — агрегат по всему архиву.
type Stats struct {
	TotalRuns  int64
	Succeeded  int64
	Failed     int64
	Workflows  int64
	TotalSteps int64

	// AvgTimeSec — среднее время запуска в секундах.
	AvgTimeSec float64
}

// Stats возвращает агрегированную статистику архива.
func (r *RunRepo) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE success),
		       COUNT(*) FILTER (WHERE NOT success),
		       COUNT(DISTINCT workflow),
		       COALESCE(SUM(executed_steps), 0),
		       COALESCE(AVG(total_time_sec), 0)
		FROM runs
	`
	var s Stats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.TotalRuns,
		&s.Succeeded,
		&s.Failed,
		&s.Workflows,
		&s.TotalSteps,
		&s.AvgTimeSec,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &s, nil
}

// --- Helpers ---

// scanRun сканирует строку в RunRecord. pgx.Rows удовлетворяет
// pgx.Row, поэтому хелпер один на оба пути.
func scanRun(row pgx.Row) (*RunRecord, error) {
	var rec RunRecord
	var contextJSON []byte

	err := row.Scan(
		&rec.ID,
		&rec.Workflow,
		&rec.Success,
		&rec.TotalSteps,
		&rec.ExecutedSteps,
		&rec.Succeeded,
		&rec.Failed,
		&rec.Skipped,
		&rec.TotalTimeSec,
		&contextJSON,
		&rec.StartedAt,
		&rec.FinishedAt,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &rec.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context: %w", err)
		}
	}

	return &rec, nil
}

// scanStep сканирует строку в StepRecord.
func scanStep(row pgx.Row) (*StepRecord, error) {
	var rec StepRecord
	var tagsJSON, metricsJSON, metadataJSON, dataJSON []byte
	var lastError *string

	err := row.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Position,
		&rec.Name,
		&rec.Success,
		&rec.Message,
		&rec.Skipped,
		&rec.Executed,
		&rec.TimeTakenSec,
		&rec.Attempts,
		&tagsJSON,
		&metricsJSON,
		&metadataJSON,
		&dataJSON,
		&lastError,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan step: %w", err)
	}

	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{tagsJSON, &rec.Tags},
		{metricsJSON, &rec.Metrics},
		{metadataJSON, &rec.Metadata},
		{dataJSON, &rec.Data},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("unmarshal step field: %w", err)
		}
	}

	if lastError != nil {
		rec.LastError = *lastError
	}

	return &rec, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isUniqueViolation распознаёт нарушение уникальности Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
