package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Conductor/internal/domain"
)

// MessageType — тип события в очереди.
type MessageType string

// Типы событий выполнения.
const (
	MessageTypeExecutionStarted   MessageType = "execution.started"
	MessageTypeExecutionCompleted MessageType = "execution.completed"
	MessageTypeExecutionFailed    MessageType = "execution.failed"
)

// Publisher публикует события выполнения в RabbitMQ.
//
// Реализует orchestrator.EventPublisher.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — событие для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип события.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionEventPayload — payload событий жизненного цикла выполнения.
type ExecutionEventPayload struct {
	RecordID          uuid.UUID `json:"record_id"`
	WorkflowID        string    `json:"workflow_id"`
	AgentID           string    `json:"agent_id,omitempty"`
	Status            string    `json:"status"`
	ValidationStatus  string    `json:"validation_status"`
	RollbackPerformed bool      `json:"rollback_performed"`
	Error             string    `json:"error,omitempty"`
	DurationSeconds   float64   `json:"duration_seconds"`
}

// PublishExecutionStarted публикует событие о начале выполнения.
func (p *Publisher) PublishExecutionStarted(ctx context.Context, rec *domain.ExecutionRecord) error {
	return p.publishEvent(ctx, MessageTypeExecutionStarted, RoutingKeyStarted, rec)
}

// PublishExecutionCompleted публикует событие об успешном завершении.
func (p *Publisher) PublishExecutionCompleted(ctx context.Context, rec *domain.ExecutionRecord) error {
	return p.publishEvent(ctx, MessageTypeExecutionCompleted, RoutingKeyCompleted, rec)
}

// PublishExecutionFailed публикует событие о провале выполнения.
func (p *Publisher) PublishExecutionFailed(ctx context.Context, rec *domain.ExecutionRecord) error {
	return p.publishEvent(ctx, MessageTypeExecutionFailed, RoutingKeyFailed, rec)
}

func (p *Publisher) publishEvent(ctx context.Context, msgType MessageType, key RoutingKey, rec *domain.ExecutionRecord) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: msgType,
		Payload: ExecutionEventPayload{
			RecordID:          rec.ID,
			WorkflowID:        rec.WorkflowID,
			AgentID:           rec.AgentID,
			Status:            string(rec.Status),
			ValidationStatus:  string(rec.ValidationStatus),
			RollbackPerformed: rec.RollbackPerformed,
			Error:             rec.Error,
			DurationSeconds:   rec.DurationSeconds,
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeExecutions, key, msg)
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}
