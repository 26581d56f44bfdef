package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Cascade/internal/config"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/report"
	"github.com/shaiso/Cascade/internal/steps"
	"github.com/shaiso/Cascade/internal/telemetry"
	"github.com/shaiso/Cascade/internal/workflow"
)

// NewRunCmd создаёт команду локального выполнения workflow файла.
//
// Выполнение идёт в процессе команды: файл загружается, собирается
// в Runner и выполняется движком. Код выхода 1, если итог запуска
// неуспешен.
func NewRunCmd(outputFn func() *Output) *cobra.Command {
	var (
		cfgPath         string
		vars            []string
		publish         bool
		workers         int
		timeout         time.Duration
		retries         int
		noStopOnFailure bool
	)

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			wf, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}

			runVars, err := parseVars(vars)
			if err != nil {
				return err
			}

			runID := uuid.New()
			logger := telemetry.WithRunID(telemetry.SetupCLILogger(), runID.String())

			engineCfg := cfg.EngineConfig(wf.Name)
			engineCfg.Logger = logger
			if cmd.Flags().Changed("workers") {
				engineCfg.Workers = workers
			}
			if cmd.Flags().Changed("timeout") {
				engineCfg.DefaultTimeout = timeout
			}
			if cmd.Flags().Changed("retries") {
				// Ноль из флага — «без повторов»; в конфигурации движка
				// это отрицательное значение, ноль там значит «по умолчанию».
				engineCfg.DefaultMaxRetries = retries
				if retries == 0 {
					engineCfg.DefaultMaxRetries = -1
				}
			}
			if noStopOnFailure {
				engineCfg.ContinueOnFailure = true
			}

			runner, err := workflow.Build(wf, steps.DefaultRegistry(), engineCfg)
			if err != nil {
				return err
			}

			pub, closeMQ := setupPublisher(ctx, cfg, publish, logger)
			defer closeMQ()

			rc := engine.NewRunContext(wf.Seed(cfg.Context, runVars))
			startedAt := time.Now()

			if pub != nil {
				started := mq.RunStartedPayload{
					RunID:      runID,
					Workflow:   wf.Name,
					TotalSteps: wf.EnabledSteps(),
					StartedAt:  startedAt,
				}
				if err := pub.PublishRunStarted(ctx, started); err != nil {
					logger.Warn("failed to publish run.started", "error", err)
				}
			}

			results, execErr := runner.Execute(ctx, rc)
			summary := report.Summarize(results)

			// Прерванный запуск не публикуется: его отчёт неполон.
			if pub != nil && execErr == nil {
				completed := mq.RunCompletedPayload{
					RunID:      runID,
					Workflow:   wf.Name,
					Success:    summary.Success,
					Summary:    summary.ToMap(),
					Results:    report.ResultMaps(results),
					Context:    rc.Snapshot(),
					StartedAt:  startedAt,
					FinishedAt: time.Now(),
				}
				if err := pub.PublishRunCompleted(ctx, completed); err != nil {
					logger.Warn("failed to publish run.completed", "error", err)
				}
			}

			out.Report(results, summary)

			if execErr != nil {
				return fmt.Errorf("run interrupted: %w", execErr)
			}
			if !summary.Success {
				return fmt.Errorf("run failed: %d of %d steps failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to application config (default "+config.DefaultPath+")")
	cmd.Flags().StringSliceVar(&vars, "var", nil, "Context values as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish run events to RabbitMQ")
	cmd.Flags().IntVar(&workers, "workers", 0, "Goroutine pool size for steps")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Default timeout per step attempt")
	cmd.Flags().IntVar(&retries, "retries", 0, "Default retries after a failed attempt")
	cmd.Flags().BoolVar(&noStopOnFailure, "no-stop-on-failure", false, "Keep executing groups after a failure")

	return cmd
}

// NewValidateCmd создаёт команду проверки workflow файла без выполнения.
func NewValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			wf, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := workflow.Validate(wf, steps.DefaultRegistry()); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow %q is valid: %d steps", wf.Name, len(wf.Steps)))

			headers := []string{"NAME", "TYPE", "GROUP", "REQUIRES", "ENABLED"}
			rows := make([][]string, len(wf.Steps))
			for i, s := range wf.Steps {
				rows[i] = []string{
					s.Name,
					s.Type,
					s.Group,
					strings.Join(s.Requires, ","),
					strconv.FormatBool(s.IsEnabled()),
				}
			}

			out.Print(headers, rows, wf)
			return nil
		},
	}
}

// NewStepsCmd создаёт команду списка зарегистрированных типов шагов.
func NewStepsCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List available step types",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			types := steps.DefaultRegistry().Types()

			rows := make([][]string, len(types))
			for i, t := range types {
				rows[i] = []string{t}
			}

			out.Print([]string{"TYPE"}, rows, types)
			return nil
		},
	}
}

// setupPublisher подключается к RabbitMQ, когда публикация событий
// включена флагом или конфигурацией. Недоступный брокер не срывает
// запуск: команда продолжает работать без событий.
func setupPublisher(ctx context.Context, cfg *config.Config, force bool, logger *slog.Logger) (*mq.Publisher, func()) {
	noop := func() {}

	if !force && !cfg.MQ.Publish {
		return nil, noop
	}
	if cfg.MQ.URL == "" {
		logger.Warn("mq.url is not set, run events disabled")
		return nil, noop
	}

	conn, err := mq.NewConnection(mq.Config{URL: cfg.MQ.URL, Logger: logger})
	if err != nil {
		logger.Warn("rabbitmq unavailable, run events disabled", "error", err)
		return nil, noop
	}

	if err := mq.SetupTopology(ctx, conn); err != nil {
		logger.Warn("rabbitmq topology setup failed, run events disabled", "error", err)
		conn.Close()
		return nil, noop
	}

	return mq.NewPublisher(conn, logger), func() { conn.Close() }
}

// parseVars разбирает пары KEY=VALUE из флагов --var.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	vars := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid var format %q, expected KEY=VALUE", kv)
		}
		vars[parts[0]] = parts[1]
	}
	return vars, nil
}
