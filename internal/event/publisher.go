package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	PublishExamEvent(event *ExamEvent) error
	PublishQuestionEvent(event *QuestionEvent) error
	PublishUserEvent(event *UserEvent) error
	Close() error
}

type EventPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	enabled      bool
}

// NewEventPublisher connects to RabbitMQ and declares the topic exchange.
// An empty URI yields a publisher that only logs.
func NewEventPublisher(rabbitURI, exchangeName string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return NewDisabledPublisher(), nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		enabled:      true,
	}, nil
}

func NewDisabledPublisher() *EventPublisher {
	return &EventPublisher{enabled: false}
}

func (p *EventPublisher) Enabled() bool {
	return p.enabled
}

func (p *EventPublisher) publishEvent(ctx context.Context, routingKey string, event any) error {
	if !p.enabled {
		log.Printf("Event publishing is disabled, skipping event: %s", routingKey)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s", routingKey)
	return nil
}

func (p *EventPublisher) PublishExamEvent(event *ExamEvent) error {
	return p.publishEvent(context.Background(), event.EventType, event)
}

func (p *EventPublisher) PublishQuestionEvent(event *QuestionEvent) error {
	return p.publishEvent(context.Background(), event.EventType, event)
}

func (p *EventPublisher) PublishUserEvent(event *UserEvent) error {
	return p.publishEvent(context.Background(), event.EventType, event)
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}

// NewExamSubmittedEvent describes a freshly graded exam.
func NewExamSubmittedEvent(examID, userID, mode string, score, total, durationSeconds int, passed bool) *ExamEvent {
	return &ExamEvent{
		EventType:       EventTypeExamSubmitted,
		ExamID:          examID,
		UserID:          userID,
		Mode:            mode,
		Score:           score,
		TotalQuestions:  total,
		DurationSeconds: durationSeconds,
		Passed:          passed,
		Timestamp:       time.Now().Unix(),
	}
}

func NewQuestionEvent(eventType string, ids []int, changedFields []string) *QuestionEvent {
	return &QuestionEvent{
		EventType:     eventType,
		QuestionIDs:   ids,
		ChangedFields: changedFields,
		Timestamp:     time.Now().Unix(),
	}
}

func NewUserEvent(eventType, userID, email, role, reason string) *UserEvent {
	return &UserEvent{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Role:      role,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}
}
