package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// ExchangeReports имя exchange для заданий на рассылку отчётов
const ExchangeReports = "reports"

// QueueConfig описывает очередь и её ключ маршрутизации
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetReportQueues возвращает очереди, которые объявляются при старте
func GetReportQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "reports.email", RoutingKey: "email"},
	}
}

// SetupChannel открывает канал, объявляет exchange и привязывает очереди
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeReports,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			ExchangeReports,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
