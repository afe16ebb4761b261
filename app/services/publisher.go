package services

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/apavering/user-directory/app/config"
	"github.com/apavering/user-directory/app/middleware"
	"github.com/apavering/user-directory/app/models"
)

// EventPublisher announces directory lifecycle events so downstream
// consumers (the auth flow that records sessions, notification services) can
// react. Publishing is fire-and-forget from the directory's point of view.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, user models.User) error
	PublishUserDeactivated(ctx context.Context, id int64) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserCreated(ctx context.Context, user models.User) error { return nil }
func (NoopPublisher) PublishUserDeactivated(ctx context.Context, id int64) error     { return nil }

// RabbitMQPublisher emits events on the users.events topic exchange.
type RabbitMQPublisher struct {
	ch *amqp.Channel
}

func NewRabbitMQPublisher(ch *amqp.Channel) *RabbitMQPublisher {
	return &RabbitMQPublisher{ch: ch}
}

type userCreatedMessage struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type userDeactivatedMessage struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

func (p *RabbitMQPublisher) PublishUserCreated(ctx context.Context, user models.User) error {
	return p.publish(ctx, "user.created", userCreatedMessage{
		Type:  "user_created",
		ID:    user.ID,
		Email: user.Email,
	})
}

func (p *RabbitMQPublisher) PublishUserDeactivated(ctx context.Context, id int64) error {
	return p.publish(ctx, "user.deactivated", userDeactivatedMessage{
		Type: "user_deactivated",
		ID:   id,
	})
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	headers := make(amqp.Table)
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		headers["X-Request-ID"] = requestID
	}

	return p.ch.PublishWithContext(
		ctx,
		config.UsersExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Headers:     headers,
		},
	)
}
