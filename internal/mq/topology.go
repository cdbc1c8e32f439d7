package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeExecutions — topic-обменник событий выполнения workflows.
const ExchangeExecutions Exchange = "conductor.executions"

// QueueExecutionsAudit — очередь для внешних подписчиков (аудит-лог).
const QueueExecutionsAudit Queue = "executions.audit"

// Routing keys событий жизненного цикла.
const (
	RoutingKeyStarted   RoutingKey = "execution.started"
	RoutingKeyCompleted RoutingKey = "execution.completed"
	RoutingKeyFailed    RoutingKey = "execution.failed"

	// RoutingKeyAll — binding-паттерн, покрывающий все события выполнения.
	RoutingKeyAll RoutingKey = "execution.*"
)

// SetupTopology объявляет обменник, очередь аудита и binding.
//
// Идемпотентно: повторный вызов на существующей топологии безопасен.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeExecutions), // name
			"topic",                    // type
			true,                       // durable
			false,                      // auto-deleted
			false,                      // internal
			false,                      // no-wait
			nil,                        // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeExecutions, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueExecutionsAudit), // name
			true,                         // durable
			false,                        // delete when unused
			false,                        // exclusive
			false,                        // no-wait
			nil,                          // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueExecutionsAudit, err)
		}

		err = ch.QueueBind(
			string(QueueExecutionsAudit), // queue name
			string(RoutingKeyAll),        // routing key
			string(ExchangeExecutions),   // exchange
			false,                        // no-wait
			nil,                          // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueExecutionsAudit, ExchangeExecutions, err)
		}

		return nil
	})
}
