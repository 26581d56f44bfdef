// Пакет workflow отвечает за авторинг: YAML-определения процессов,
// их строгий разбор, валидацию и сборку в готовый Runner.
//
// Конвейер:
//
//	wf, err := workflow.LoadFile("workflows/deploy.yaml")
//	runner, err := workflow.Build(wf, steps.DefaultRegistry(), cfg.EngineConfig(wf.Name))
//	results, err := runner.Execute(ctx, engine.NewRunContext(wf.Seed(cfg.Context, vars)))
//
// Разделение строгости: движок лоялен (неизвестная зависимость —
// пропуск шага), этот пакет строг (неизвестная зависимость, опечатка
// в поле, непринятая сборщиком конфигурация — ошибки валидации).
// Ошибки валидации — *ValidationError с именем шага и полем, каждая
// оборачивает свой сентинел для errors.Is.
//
// Файлы пакета:
//   - workflow.go — типы Workflow и StepSpec, Seed
//   - load.go     — Parse, Load, LoadFile
//   - validate.go — Validate
//   - build.go    — Build
//   - errors.go   — сентинелы и ValidationError
package workflow
