package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

const (
	// StepTypeCommand — тип шага локальной команды.
	StepTypeCommand = "command"

	// Ключи конфигурации command.
	configCommand    = "command"
	configWorkingDir = "working_dir"
	configEnv        = "env"
)

// CommandStep — шаг запуска локальной команды.
//
// Аргументы, рабочая директория и значения env могут содержать шаблоны —
// они рендерятся по снимку RunContext перед запуском.
//
// Конфигурация:
//
//	command: ["sh", "-c", "echo {{ .name }}"]
//	working_dir: /tmp
//	env:
//	  TARGET: "{{ .target }}"
//	context_key: output        # сохранить stdout в RunContext
//
// Ненулевой код выхода — это результат команды, а не сбой
// инфраструктуры: команды не обязаны быть идемпотентными, поэтому
// такой исход возвращается готовым неуспешным результатом и под
// повторы движка не попадает. Ошибка запуска (нет бинаря, нет прав)
// возвращается ошибкой и повторяется.
type CommandStep struct{}

// NewCommandStep создаёт новый CommandStep.
func NewCommandStep() *CommandStep {
	return &CommandStep{}
}

// Type возвращает тип шага.
func (s *CommandStep) Type() string {
	return StepTypeCommand
}

// Build собирает функцию запуска команды.
func (s *CommandStep) Build(config map[string]any) (engine.StepFunc, error) {
	argv := GetConfigStringSlice(config, configCommand)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: %s: command is required", ErrInvalidConfig, StepTypeCommand)
	}

	workDir := GetConfigString(config, configWorkingDir)
	env := GetConfigMapString(config, configEnv)
	contextKey := GetConfigString(config, configContextKey)

	return func(ctx context.Context, rc *engine.RunContext) (any, error) {
		snapshot := rc.Snapshot()

		rendered := make([]string, len(argv))
		for i, arg := range argv {
			value, err := Render(arg, snapshot)
			if err != nil {
				return nil, fmt.Errorf("render command: %w", err)
			}
			rendered[i] = value
		}

		dir, err := Render(workDir, snapshot)
		if err != nil {
			return nil, fmt.Errorf("render working_dir: %w", err)
		}

		cmd := exec.CommandContext(ctx, rendered[0], rendered[1:]...)
		cmd.Dir = dir

		if len(env) > 0 {
			environ := os.Environ()
			for key, value := range env {
				renderedValue, err := Render(value, snapshot)
				if err != nil {
					return nil, fmt.Errorf("render env %s: %w", key, err)
				}
				environ = append(environ, key+"="+renderedValue)
			}
			cmd.Env = environ
		}

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				message := fmt.Sprintf("Command failed: %v", err)
				if line := firstLine(stderr.String()); line != "" {
					message += ": " + line
				}
				return domain.Legacy{
					Success: false,
					Message: message,
					Data: map[string]any{
						"exit_code": exitErr.ExitCode(),
						"stdout":    stdout.String(),
						"stderr":    stderr.String(),
					},
				}, nil
			}

			return nil, fmt.Errorf("start command: %w", err)
		}

		output := strings.TrimSpace(stdout.String())
		if contextKey != "" {
			rc.Set(contextKey, output)
		}

		return domain.Legacy{
			Success: true,
			Message: fmt.Sprintf("Command succeeded: %s", rendered[0]),
			Data:    output,
		}, nil
	}, nil
}

// firstLine возвращает первую непустую строку вывода.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
