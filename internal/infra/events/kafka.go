package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/barberly/booking-engine/internal/domain"
)

// KafkaConfig параметры паблишера Kafka
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	MaxAttempts  int
	BatchTimeout time.Duration
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// KafkaPublisher публикует события в топик Kafka
// Ключ сообщения = ID бронирования, поэтому события одного бронирования попадают в одну партицию по порядку
type KafkaPublisher struct {
	writer *kafka.Writer
	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher создает паблишер Kafka
func NewKafkaPublisher(cfg KafkaConfig, logger Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: at least one kafka broker is required", ErrPublish)
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: kafka topic cannot be empty", ErrPublish)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  cfg.MaxAttempts,
		BatchTimeout: cfg.BatchTimeout,
		Logger:       kafka.LoggerFunc(func(string, ...interface{}) {}),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	logger.Info("KafkaPublisher: publishing to topic %s via %v", cfg.Topic, cfg.Brokers)

	return &KafkaPublisher{writer: writer}, nil
}

// Publish отправляет событие синхронно
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	msg, err := toKafkaMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: kafka write event %s: %v", ErrPublish, event.ID, err)
	}
	return nil
}

// Close дожидается отправки буфера и закрывает writer
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func toKafkaMessage(event domain.BookingEvent) (kafka.Message, error) {
	body, err := encode(event)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(event.ID)},
			{Key: HeaderEventType, Value: []byte(event.Type)},
		},
	}, nil
}
