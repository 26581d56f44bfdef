package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shaiso/Cascade/internal/engine"
)

// Значения по умолчанию.
const (
	// DefaultPath — путь к файлу конфигурации, если он не указан явно.
	DefaultPath = "configs/cascade.yaml"

	defaultTimeoutSec = 30.0
	defaultMaxRetries = 1
	defaultWorkers    = 8
	defaultAPIPort    = 8080
	defaultTickSec    = 1
)

// ErrInvalid — конфигурация не прошла валидацию.
var ErrInvalid = errors.New("invalid config")

// Config — конфигурация приложения.
//
// Загружается из YAML файла с наложением переменных окружения,
// см. Load.
type Config struct {
	// Runner — параметры движка выполнения workflow.
	Runner RunnerConfig `mapstructure:"runner"`

	// DB — подключение к Postgres для архива запусков.
	DB DBConfig `mapstructure:"db"`

	// MQ — подключение к RabbitMQ для событий о запусках.
	MQ MQConfig `mapstructure:"mq"`

	// API — HTTP сервис истории запусков.
	API APIConfig `mapstructure:"api"`

	// Scheduler — расписания автоматических запусков.
	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	// Context — начальные данные RunContext, общие для всех workflow.
	// Workflow файл и флаги CLI накладываются поверх.
	Context map[string]any `mapstructure:"context"`
}

// RunnerConfig — секция runner.
type RunnerConfig struct {
	// StopOnFailure останавливает запуск после первой группы с ошибкой.
	// По умолчанию true.
	StopOnFailure bool `mapstructure:"stop_on_failure"`

	// TimeoutSec — таймаут одной попытки шага в секундах.
	TimeoutSec float64 `mapstructure:"timeout_sec"`

	// MaxRetries — число повторов после неудачной попытки.
	// Ноль означает «без повторов».
	MaxRetries int `mapstructure:"max_retries"`

	// Workers — размер общего пула горутин для шагов.
	Workers int `mapstructure:"workers"`

	// RetryDelayMs — пауза между попытками в миллисекундах.
	RetryDelayMs int `mapstructure:"retry_delay_ms"`

	// RetryBackoff — стратегия паузы: "fixed" или "exponential".
	RetryBackoff string `mapstructure:"retry_backoff"`
}

// DBConfig — секция db.
type DBConfig struct {
	// URL — строка подключения Postgres. Пустая строка — локальное
	// подключение по умолчанию.
	URL string `mapstructure:"url"`
}

// MQConfig — секция mq.
type MQConfig struct {
	// URL — строка подключения RabbitMQ. Пустая строка — события отключены.
	URL string `mapstructure:"url"`

	// Publish включает публикацию событий run.started / run.completed.
	Publish bool `mapstructure:"publish"`
}

// APIConfig — секция api.
type APIConfig struct {
	// Port — порт HTTP сервиса.
	Port int `mapstructure:"port"`
}

// SchedulerConfig — секция scheduler.
type SchedulerConfig struct {
	// TickSec — период проверки расписаний в секундах.
	TickSec int `mapstructure:"tick_sec"`

	// Entries — список расписаний.
	Entries []ScheduleEntry `mapstructure:"entries"`
}

// ScheduleEntry — одно расписание запуска workflow файла.
//
// Задаётся либо cron выражение, либо интервал — но не оба сразу.
type ScheduleEntry struct {
	// Workflow — путь к workflow файлу.
	Workflow string `mapstructure:"workflow"`

	// Cron — выражение из 5 полей: "*/5 * * * *".
	Cron string `mapstructure:"cron"`

	// IntervalSec — интервал между запусками в секундах.
	IntervalSec int `mapstructure:"interval_sec"`

	// Timezone — IANA таймзона для cron выражения, по умолчанию UTC.
	Timezone string `mapstructure:"timezone"`

	// Enabled — выключатель расписания. Не задано — включено.
	Enabled *bool `mapstructure:"enabled"`

	// Vars — переменные, добавляемые в RunContext каждого запуска.
	Vars map[string]string `mapstructure:"vars"`
}

// IsEnabled сообщает, активно ли расписание.
func (e ScheduleEntry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Interval возвращает интервал расписания как time.Duration.
func (e ScheduleEntry) Interval() time.Duration {
	return time.Duration(e.IntervalSec) * time.Second
}

// Load читает конфигурацию приложения.
//
// Порядок источников (поздние перекрывают ранние):
//  1. значения по умолчанию;
//  2. YAML файл path (по умолчанию configs/cascade.yaml);
//  3. переменные окружения: ключ db.url читается из DB_URL,
//     runner.workers — из RUNNER_WORKERS и так далее.
//
// Отсутствие файла по умолчанию не является ошибкой — работают
// значения по умолчанию и переменные окружения. Явно указанный
// файл обязан существовать.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults регистрирует значения по умолчанию.
// Unmarshal видит переменные окружения только для известных ключей,
// поэтому каждый ключ обязан получить значение по умолчанию.
func setDefaults(v *viper.Viper) {
	v.SetDefault("runner.stop_on_failure", true)
	v.SetDefault("runner.timeout_sec", defaultTimeoutSec)
	v.SetDefault("runner.max_retries", defaultMaxRetries)
	v.SetDefault("runner.workers", defaultWorkers)
	v.SetDefault("runner.retry_delay_ms", 0)
	v.SetDefault("runner.retry_backoff", engine.BackoffFixed)
	v.SetDefault("db.url", "")
	v.SetDefault("mq.url", "")
	v.SetDefault("mq.publish", false)
	v.SetDefault("api.port", defaultAPIPort)
	v.SetDefault("scheduler.tick_sec", defaultTickSec)
}

// validate проверяет согласованность загруженной конфигурации.
func (c *Config) validate() error {
	if c.Runner.Workers < 0 {
		return fmt.Errorf("%w: runner.workers must not be negative, got %d",
			ErrInvalid, c.Runner.Workers)
	}

	switch c.Runner.RetryBackoff {
	case "", engine.BackoffFixed, engine.BackoffExponential:
	default:
		return fmt.Errorf("%w: runner.retry_backoff must be %q or %q, got %q",
			ErrInvalid, engine.BackoffFixed, engine.BackoffExponential, c.Runner.RetryBackoff)
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("%w: api.port must be in 1..65535, got %d", ErrInvalid, c.API.Port)
	}

	if c.Scheduler.TickSec <= 0 {
		return fmt.Errorf("%w: scheduler.tick_sec must be positive, got %d",
			ErrInvalid, c.Scheduler.TickSec)
	}

	for i, entry := range c.Scheduler.Entries {
		if entry.Workflow == "" {
			return fmt.Errorf("%w: scheduler.entries[%d]: workflow is required", ErrInvalid, i)
		}
		if entry.Cron == "" && entry.IntervalSec <= 0 {
			return fmt.Errorf("%w: scheduler.entries[%d]: cron or interval_sec is required",
				ErrInvalid, i)
		}
		if entry.Cron != "" && entry.IntervalSec > 0 {
			return fmt.Errorf("%w: scheduler.entries[%d]: cron and interval_sec are mutually exclusive",
				ErrInvalid, i)
		}
	}

	return nil
}

// EngineConfig проецирует секцию runner на конфигурацию движка.
//
// В файле max_retries: 0 означает «без повторов», тогда как ноль в
// engine.Config трактуется как «значение по умолчанию» — поэтому ноль
// транслируется в отрицательное значение.
func (c *Config) EngineConfig(name string) engine.Config {
	retries := c.Runner.MaxRetries
	if retries == 0 {
		retries = -1
	}

	return engine.Config{
		Name:              name,
		ContinueOnFailure: !c.Runner.StopOnFailure,
		DefaultTimeout:    time.Duration(c.Runner.TimeoutSec * float64(time.Second)),
		DefaultMaxRetries: retries,
		Workers:           c.Runner.Workers,
		RetryDelay:        time.Duration(c.Runner.RetryDelayMs) * time.Millisecond,
		RetryBackoff:      c.Runner.RetryBackoff,
	}
}
