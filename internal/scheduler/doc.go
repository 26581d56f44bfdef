// Package scheduler реализует запуск workflow файлов по расписанию.
//
// Записи расписаний приходят из конфигурации приложения (секция
// scheduler.entries): путь к workflow файлу плюс cron выражение или
// интервал. Состояния в БД нет — next держится в памяти процесса.
//
// Структура:
//   - scheduler.go — цикл Run/Tick, запуск записей
//   - cron.go      — вычисление следующего срока (robfig/cron)
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Entries:   cfg.Scheduler.Entries,
//	    Base:      cfg.EngineConfig(""),
//	    Seed:      cfg.Context,
//	    Tick:      time.Second,
//	    Publisher: publisher, // опционально
//	    Logger:    logger,
//	    Metrics:   metrics,   // опционально
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Блокируется до отмены контекста.
//	sched.Run(ctx)
//
// Каждый срок выполняется в отдельной горутине: записи не мешают
// друг другу, а пока запуск записи не завершился, её новые сроки
// пропускаются. Cron выражения трактуются в таймзоне записи, сроки
// хранятся в UTC.
package scheduler
