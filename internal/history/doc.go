// Package history — архив завершённых запусков в Postgres.
//
// Архив хранит отчёты, не состояние выполнения: строка в runs и
// строки в run_steps появляются один раз, когда запуск уже завершён,
// и больше не меняются. Горячего пути выполнения БД не касается.
//
// Путь данных: движок завершает запуск → публикуется run.completed с
// полным отчётом → Archiver разбирает payload в RunRecord/StepRecord
// и сохраняет их одной транзакцией. API читает архив через RunRepo.
//
// Файлы пакета:
//   - db.go       — пул соединений pgx
//   - records.go  — RunRecord, StepRecord, разбор payload
//   - run_repo.go — RunRepo: SaveReport, GetByID, List, ListSteps, Stats
//   - archiver.go — consumer очереди runs.archive
//   - errors.go   — ErrNotFound, ErrAlreadyExists
package history
