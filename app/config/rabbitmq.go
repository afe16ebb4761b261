package config

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// UsersExchange is the topic exchange carrying directory lifecycle events.
const UsersExchange = "users.events"

// NewRabbitMQConnection dials RabbitMQ using RABBITMQ_URL, opens a channel
// and declares the users.events topic exchange.
func NewRabbitMQConnection() (*amqp.Connection, *amqp.Channel, error) {
	url := GetString("RABBITMQ_URL", "")
	if url == "" {
		return nil, nil, fmt.Errorf("RABBITMQ_URL is not set")
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	if err := ch.ExchangeDeclare(UsersExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("exchange declare failed: %w", err)
	}

	return conn, ch, nil
}
