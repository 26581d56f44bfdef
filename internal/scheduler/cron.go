package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Cascade/internal/config"
)

// cronParser — парсер cron-выражений из 5 полей.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDue вычисляет следующее время запуска для записи расписания.
//
// Cron выражение трактуется в таймзоне записи (по умолчанию UTC),
// для интервалов к from добавляется IntervalSec. Результат всегда
// в UTC.
func NextDue(entry config.ScheduleEntry, from time.Time) (time.Time, error) {
	loc := time.UTC
	if entry.Timezone != "" {
		l, err := time.LoadLocation(entry.Timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("load timezone %q: %w", entry.Timezone, err)
		}
		loc = l
	}

	fromTz := from.In(loc)

	if entry.Cron != "" {
		return nextCron(entry.Cron, fromTz)
	}

	if entry.IntervalSec > 0 {
		return fromTz.Add(entry.Interval()).UTC(), nil
	}

	return time.Time{}, errors.New("entry has neither cron nor interval_sec")
}

// nextCron вычисляет следующее время по cron-выражению.
func nextCron(expr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	return schedule.Next(from).UTC(), nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
