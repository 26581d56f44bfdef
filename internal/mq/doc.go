// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// События — уведомления о локально выполненных запусках. Никто не
// потребляет их для управления выполнением: запуск целиком живёт в
// процессе, который его начал.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий запусков
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - run.started    — запуск начался
//   - run.completed  — запуск завершён, payload несёт полный отчёт
//
// Exchanges:
//   - cascade.runs   — события запусков (topic)
//   - cascade.dlq    — dead letter queue
package mq
