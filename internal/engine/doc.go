// Package engine содержит движок выполнения шагов.
//
// Включает:
//   - step.go      — декларация шага и сигнатура StepFunc
//   - context.go   — RunContext, общее хранилище данных run
//   - group.go     — разбиение шагов на группы выполнения
//   - normalize.go — нормализация возвращаемых значений шагов
//   - runner.go    — Runner: регистрация, группы, таймауты, повторы
//
// Движок выполняет группы последовательно, шаги внутри группы —
// одновременно. Зависимости шага — плоская проверка по именам
// успешно завершённых шагов, а не топологическая сортировка.
package engine
