package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange — обменник для сообщений об истёкших подписках.
const Exchange = "premium"

// QueueExpired — очередь для писем о сброшенном премиуме.
const QueueExpired = "premium.expired"

// RoutingKeyExpired — ключ маршрутизации для сообщений о сбросе.
const RoutingKeyExpired = "expired"

// SetupChannel открывает канал и объявляет обменник, очередь и привязку.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		Exchange,
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
	_, err = ch.QueueDeclare(
		QueueExpired,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.QueueBind(QueueExpired, RoutingKeyExpired, Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
