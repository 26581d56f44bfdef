// Package steps содержит библиотеку встроенных типов шагов.
//
// # Обзор
//
// Шаг в workflow файле описывается типом и конфигурацией. Пакет
// превращает такое описание в функцию движка:
//
//	type Step interface {
//	    Type() string
//	    Build(config map[string]any) (engine.StepFunc, error)
//	}
//
// Build валидирует конфигурацию один раз, при сборке workflow, и
// возвращает замыкание — его движок вызывает по правилам запуска
// (таймауты, повторы, зависимости). Ошибки конфигурации всплывают
// до старта, а не в середине запуска.
//
// # Registry
//
// Registry сопоставляет тип шага его фабрике:
//
//	registry := steps.DefaultRegistry()  // delay, http, command, transform, validate
//	step, err := registry.Get("http")
//	if err != nil {
//	    // неизвестный тип
//	}
//	fn, err := step.Build(cfg)
//
// # Шаблоны
//
// Строковые значения конфигурации (url, headers, body, command, env,
// mappings) могут содержать Go template выражения. Они рендерятся по
// снимку RunContext перед каждой попыткой, данные — ключи контекста:
//
//	url: "{{ .base_url }}/users/{{ .user_id }}"
//
// Доступны функции json, toJSON, fromJSON, default, coalesce, join,
// split, contains, hasPrefix, hasSuffix, lower, upper, trim, replace.
//
// # Типы шагов
//
// ## delay (delay.go)
//
// Пауза. Конфигурация: duration_sec (float) или duration_ms (int).
//
// ## http (http.go)
//
// HTTP запрос к внешнему API. Конфигурация: method, url, headers,
// body, follow_redirects, validate_ssl, expect_status, context_key.
// Сетевые ошибки и неожиданный статус — ошибки (движок повторяет),
// успех — результат с метрикой status_code и телом ответа в Data.
//
// ## command (command.go)
//
// Локальная команда. Конфигурация: command (argv список), working_dir,
// env, context_key. Возвращает классическую тройку (успех, сообщение,
// данные); ненулевой код выхода — неуспешный результат без повторов.
//
// ## transform (transform.go)
//
// Рендеринг шаблонов в ключи контекста. Конфигурация: mappings —
// имя ключа на шаблон. Результаты парсятся из JSON, где возможно.
//
// ## validate (validate.go)
//
// Декларативные проверки контекста. Конфигурация: checks (key, equals,
// not_empty, min, max, contains) и skip_if_missing — отсутствие ключа
// превращает шаг в осознанный пропуск.
//
// # Обработка ошибок
//
// Ошибки сборки оборачивают ErrInvalidConfig, неизвестный тип —
// ErrStepNotFound, ошибки шаблонов — ErrTemplateParse и
// ErrTemplateRender. Ошибки выполнения шаги возвращают обычными
// ошибками — retry логика находится в движке. Детерминированные
// неуспехи (непройденная проверка, ненулевой код выхода) возвращаются
// готовыми результатами и не повторяются.
//
// # Файлы пакета
//
//   - step.go      — интерфейс Step, ошибки, извлечение значений конфига
//   - registry.go  — Registry для получения Step по типу
//   - template.go  — рендеринг шаблонов по снимку RunContext
//   - delay.go     — DelayStep
//   - http.go      — HTTPStep
//   - command.go   — CommandStep
//   - transform.go — TransformStep
//   - validate.go  — ValidateStep
package steps
