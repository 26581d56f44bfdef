package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	// ExchangeRuns — события жизненного цикла запусков (topic).
	ExchangeRuns Exchange = "cascade.runs"

	// ExchangeDLQ — dead letter exchange.
	ExchangeDLQ Exchange = "cascade.dlq"
)

// Queues — имена очередей.
const (
	// QueueRunsArchive — завершённые запуски для архиватора.
	QueueRunsArchive Queue = "runs.archive"

	// QueueRunsStarted — уведомления о старте для внешних подписчиков.
	QueueRunsStarted Queue = "runs.started"

	// QueueDLQRuns — необработанные события запусков.
	QueueDLQRuns Queue = "dlq.runs"
)

// Routing keys.
const (
	RoutingKeyRunStarted   RoutingKey = "run.started"
	RoutingKeyRunCompleted RoutingKey = "run.completed"
	RoutingKeyDLQRuns      RoutingKey = "runs"
)

// SetupTopology объявляет обменники, очереди и привязки.
// Объявление идемпотентно, его делает каждый процесс при старте.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeRuns, "topic"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Отброшенные архиватором события уходят в DLQ для ручного разбора.
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQRuns),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// runs.archive — с DLQ: событие завершения терять нельзя
		{QueueRunsArchive, dlqArgs},

		// runs.started — без DLQ: чистые уведомления
		{QueueRunsStarted, nil},

		// dlq.runs — сама DLQ очередь
		{QueueDLQRuns, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueRunsArchive, RoutingKeyRunCompleted, ExchangeRuns},
		{QueueRunsStarted, RoutingKeyRunStarted, ExchangeRuns},
		{QueueDLQRuns, RoutingKeyDLQRuns, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Cascade RabbitMQ Topology:

    cascade.runs (topic)
    ├── runs.archive [routing: run.completed]
    │       Consumer: Archiver
    │       DLQ: dlq.runs
    └── runs.started [routing: run.started]
            External subscribers

    cascade.dlq (direct)
    └── dlq.runs [routing: runs]
            Manual processing
  `
}
