package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/telemetry"
)

// Default configuration values.
const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 1
	defaultWorkers    = 8
	defaultName       = "default"
	maxRetryDelay     = 30 * time.Second
)

// Стратегии паузы между попытками.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Runner выполняет зарегистрированные шаги.
//
// Runner разбивает шаги на группы выполнения и:
//   - запускает группы последовательно, шаги внутри группы — одновременно;
//   - после ошибки пропускает оставшиеся группы целиком (short-circuit,
//     отключается через ContinueOnFailure);
//   - проверяет зависимости шага по успешно завершённым именам;
//   - ограничивает каждую попытку таймаутом и повторяет до MaxRetries раз;
//   - нормализует возвращённые значения в domain.StepResult;
//   - фиксирует результаты в порядке завершения внутри группы.
//
// Количество одновременно выполняемых шагов ограничено общим пулом
// из Workers слотов независимо от ширины группы.
type Runner struct {
	name string

	continueOnFailure bool
	defaultTimeout    time.Duration
	defaultRetries    int
	retryDelay        time.Duration
	retryBackoff      string

	sem     *semaphore.Weighted
	logger  *slog.Logger
	metrics *telemetry.Metrics

	// mu защищает steps и names: регистрация и снятие снимка
	// деклараций в Execute могут идти из разных горутин.
	mu    sync.Mutex
	steps []*StepDeclaration
	names map[string]struct{}
}

// Config — конфигурация Runner.
type Config struct {
	// Name — имя workflow для журнала и метрик (default: "default").
	Name string

	// ContinueOnFailure отключает short-circuit: после ошибки шага
	// следующие группы продолжают выполняться. По умолчанию после
	// первой ошибки оставшиеся группы пропускаются целиком.
	ContinueOnFailure bool

	// DefaultTimeout — таймаут попытки для шагов без своего (default: 30s).
	DefaultTimeout time.Duration

	// DefaultMaxRetries — число повторов для шагов с MaxRetries ==
	// UnsetRetries (default: 1; отрицательное значение — без повторов).
	DefaultMaxRetries int

	// Workers — размер общего пула выполнения (default: 8).
	Workers int

	// RetryDelay — пауза перед повторной попыткой (default: 0, без паузы).
	RetryDelay time.Duration

	// RetryBackoff — стратегия роста паузы: BackoffFixed или
	// BackoffExponential (default: BackoffFixed).
	RetryBackoff string

	// Logger (опционально; если nil — slog.Default()).
	Logger *slog.Logger

	// Metrics (опционально; если nil — метрики не пишутся).
	Metrics *telemetry.Metrics
}

// New создаёт Runner.
func New(cfg Config) *Runner {
	name := cfg.Name
	if name == "" {
		name = defaultName
	}

	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retries := cfg.DefaultMaxRetries
	switch {
	case retries == 0:
		retries = defaultMaxRetries
	case retries < 0:
		retries = 0
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	backoff := cfg.RetryBackoff
	if backoff == "" {
		backoff = BackoffFixed
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		name:              name,
		continueOnFailure: cfg.ContinueOnFailure,
		defaultTimeout:    timeout,
		defaultRetries:    retries,
		retryDelay:        cfg.RetryDelay,
		retryBackoff:      backoff,
		sem:               semaphore.NewWeighted(int64(workers)),
		logger:            telemetry.WithWorkflow(logger, name),
		metrics:           cfg.Metrics,
		names:             make(map[string]struct{}),
	}
}

// Register добавляет декларацию шага.
//
// Имя должно быть уникальным: повторная регистрация возвращает
// ErrDuplicateStep, первая декларация остаётся в силе. Порядок
// регистрации определяет порядок групп и порядок шагов внутри группы.
func (r *Runner) Register(decl StepDeclaration) error {
	if decl.Name == "" {
		return ErrEmptyStepName
	}
	if decl.Fn == nil {
		return fmt.Errorf("%w: %s", ErrNilStepFunc, decl.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[decl.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStep, decl.Name)
	}

	// Runner хранит собственную копию декларации.
	decl.Requires = append([]string(nil), decl.Requires...)
	decl.Tags = append([]string(nil), decl.Tags...)

	r.names[decl.Name] = struct{}{}
	r.steps = append(r.steps, &decl)
	return nil
}

// Execute выполняет все зарегистрированные шаги.
//
// Возвращает результаты: группы идут в порядке первого появления
// ключа, результаты внутри группы — в порядке завершения. Каждый
// вызов — независимый проход: прогресс прошлых вызовов не влияет
// на новый.
//
// Единственная ошибка, которую Execute возвращает сам, — ctx.Err()
// при отмене на границе групп; вместе с ней возвращаются накопленные
// к этому моменту результаты. Ошибки шагов ошибками вызова не
// являются — они данные в результатах.
func (r *Runner) Execute(ctx context.Context, rc *RunContext) ([]*domain.StepResult, error) {
	r.mu.Lock()
	decls := make([]*StepDeclaration, len(r.steps))
	copy(decls, r.steps)
	r.mu.Unlock()

	groups := buildGroups(decls)
	state := newRunState(len(decls))

	r.logger.Info("run started", "steps", len(decls), "groups", len(groups))
	start := time.Now()

	for _, group := range groups {
		// Отмена проверяется на границе групп: начатая группа
		// всегда дорабатывает до конца.
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run cancelled",
				"completed", len(state.results),
				"error", err,
			)
			r.metrics.ObserveRun(r.name, false, time.Since(start))
			return state.results, err
		}

		// Short-circuit: после ошибки оставшиеся группы пропускаются
		// целиком, их шаги добавляются в порядке регистрации.
		if !r.continueOnFailure && state.hasFailure() {
			for _, decl := range group.members {
				r.finishStep(state, newSkip(decl, msgSkippedPreviousFailure))
			}
			continue
		}

		r.runGroup(ctx, group, rc, state)
	}

	counts := state.counts
	success := counts.Failed == 0
	r.metrics.ObserveRun(r.name, success, time.Since(start))
	r.logger.Info("run completed",
		"success", success,
		"succeeded", counts.Succeeded,
		"failed", counts.Failed,
		"skipped", counts.Skipped,
		"took", time.Since(start),
	)

	return state.results, nil
}

// runGroup выполняет одну группу: шаги стартуют одновременно,
// результаты фиксируются в порядке завершения.
func (r *Runner) runGroup(ctx context.Context, group executionGroup, rc *RunContext, state *runState) {
	succeeded := state.succeededSnapshot()

	results := make(chan *domain.StepResult, len(group.members))
	for _, decl := range group.members {
		go func(decl *StepDeclaration) {
			results <- r.processStep(ctx, decl, rc, succeeded)
		}(decl)
	}

	for range group.members {
		r.finishStep(state, <-results)
	}
}

// finishStep фиксирует результат шага: список, журнал, метрики.
func (r *Runner) finishStep(state *runState, res *domain.StepResult) {
	state.append(res)
	r.metrics.ObserveStep(r.name, res.Name, res.Status(), res.TimeTaken)

	switch res.Status() {
	case domain.StatusSucceeded:
		r.logger.Info("step succeeded",
			"step", res.Name,
			"attempts", res.Attempts,
			"took", res.TimeTaken,
		)
	case domain.StatusSkipped:
		r.logger.Info("step skipped", "step", res.Name, "reason", res.Message)
	default:
		r.logger.Warn("step failed",
			"step", res.Name,
			"attempts", res.Attempts,
			"error", res.Message,
		)
	}
}

// processStep обрабатывает один шаг: проверка зависимостей, слот
// пула, затем попытки с таймаутом.
//
// Зависимости проверяются по снимку успешных шагов на момент старта
// группы, поэтому параллельные соседи друг друга не удовлетворяют.
func (r *Runner) processStep(ctx context.Context, decl *StepDeclaration, rc *RunContext, succeeded map[string]bool) *domain.StepResult {
	// 1. Проверка зависимостей. Пропуск не участвует в попытках.
	if missing := missingDependencies(decl.Requires, succeeded); len(missing) > 0 {
		return newSkip(decl, missingDepsMessage(missing))
	}

	res := newResult(decl)
	res.Executed = true

	// 2. Слот общего пула. Время шага отсчитывается после получения
	// слота: ожидание в очереди попыткой не считается.
	if err := r.sem.Acquire(ctx, 1); err != nil {
		res.Success = false
		res.Message = executionMessage(err)
		res.LastError = err.Error()
		res.Attempts = 1
		return res
	}
	defer r.sem.Release(1)

	// 3. Попытки с таймаутом. TimeTaken накапливается по всем
	// попыткам, включая паузы между ними.
	timeout := r.stepTimeout(decl)
	maxAttempts := r.stepRetries(decl) + 1
	start := time.Now()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := r.runAttempt(ctx, decl.Fn, rc, timeout)
		if err == nil {
			norm, normErr := normalize(raw)
			if normErr != nil {
				// Шаг уже вернул значение — повторять нечего.
				res.Success = false
				res.Message = invalidReturnMessage(raw)
				res.Attempts = attempt
				break
			}
			mergeResult(res, norm)
			res.Attempts = attempt
			break
		}

		res.LastError = err.Error()

		// Отмена всего run прекращает попытки сразу.
		if ctx.Err() != nil {
			res.Success = false
			res.Message = executionMessage(ctx.Err())
			res.Attempts = attempt
			break
		}

		if attempt == maxAttempts {
			res.Success = false
			if errors.Is(err, ErrTimeout) {
				res.Message = timeoutMessage(timeout)
			} else {
				res.Message = executionMessage(err)
			}
			res.Attempts = attempt
			break
		}

		r.metrics.CountRetry(r.name, decl.Name)
		r.logger.Debug("retrying step",
			"step", decl.Name,
			"attempt", attempt,
			"error", err,
		)

		if delay := backoffDelay(r.retryDelay, r.retryBackoff, attempt); delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				res.Success = false
				res.Message = executionMessage(ctx.Err())
				res.LastError = ctx.Err().Error()
				res.Attempts = attempt
				res.TimeTaken = time.Since(start)
				return res
			}
		}
	}

	res.TimeTaken = time.Since(start)
	return res
}

// runAttempt выполняет одну попытку шага под таймаутом.
//
// Паника внутри шага перехватывается и превращается в ошибку попытки.
// Если шаг не уважает ctx и продолжает работать после таймаута,
// попытка всё равно завершается: горутина шага дорабатывает в фоне
// и пишет в буферизованный канал.
func (r *Runner) runAttempt(ctx context.Context, fn StepFunc, rc *RunContext, timeout time.Duration) (any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		value, err := fn(attemptCtx, rc)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			// Шаг уважил ctx и сам вернул ошибку дедлайна.
			if errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, ErrTimeout
			}
			return nil, out.err
		}
		return out.value, nil

	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrTimeout
	}
}

// stepTimeout возвращает действующий таймаут попытки шага.
func (r *Runner) stepTimeout(decl *StepDeclaration) time.Duration {
	if decl.Timeout > 0 {
		return decl.Timeout
	}
	return r.defaultTimeout
}

// stepRetries возвращает действующее число повторов шага.
func (r *Runner) stepRetries(decl *StepDeclaration) int {
	if decl.MaxRetries >= 0 {
		return decl.MaxRetries
	}
	return r.defaultRetries
}

// newResult создаёт базовую запись результата с метками декларации.
func newResult(decl *StepDeclaration) *domain.StepResult {
	res := &domain.StepResult{Name: decl.Name}
	for _, tag := range decl.Tags {
		res.AddTag(tag)
	}
	return res
}

// newSkip создаёт результат пропуска до выполнения.
func newSkip(decl *StepDeclaration, message string) *domain.StepResult {
	res := newResult(decl)
	res.Success = true
	res.Skipped = true
	res.Message = message
	return res
}

// mergeResult переносит поля нормализованного возврата шага в итоговую
// запись. Executed, Attempts и тайминги остаются за движком; skip из
// самого шага сохраняет Executed == true.
func mergeResult(res, norm *domain.StepResult) {
	res.Success = norm.Success
	res.Message = norm.Message
	res.Data = norm.Data
	res.Skipped = norm.Skipped
	for _, tag := range norm.Tags {
		res.AddTag(tag)
	}
	res.Metrics = norm.Metrics
	res.Metadata = norm.Metadata
}

// missingDependencies возвращает зависимости, отсутствующие среди
// успешно завершённых шагов, в порядке объявления.
func missingDependencies(requires []string, succeeded map[string]bool) []string {
	var missing []string
	for _, name := range requires {
		if !succeeded[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// backoffDelay вычисляет паузу перед попыткой attempt+1.
// База 0 — без паузы. Экспоненциальная стратегия удваивает паузу
// после каждой попытки с потолком maxRetryDelay.
func backoffDelay(base time.Duration, strategy string, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	delay := base
	if strategy == BackoffExponential {
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay >= maxRetryDelay {
				return maxRetryDelay
			}
		}
	}

	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
