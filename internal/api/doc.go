// Package api содержит HTTP API архива запусков.
//
// API только читает: список запусков с фильтрами, отчёт запуска, его
// шаги и агрегированную статистику. Создание запусков остаётся за CLI
// и планировщиком.
//
// Структура:
//   - handler.go     — Handler с зависимостями (репозиторий, logger)
//   - routes.go      — регистрация маршрутов
//   - middleware.go  — middleware (logging, recovery)
//   - response.go    — унифицированные JSON-ответы и обработка ошибок
//   - dto.go         — response-структуры
//   - run_handler.go — обработчики /runs и /stats
package api
