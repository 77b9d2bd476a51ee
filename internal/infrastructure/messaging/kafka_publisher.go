// Package messaging publica los eventos del flujo de compras.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/pkg/config"
)

var (
	_ procurement.EventPublisher = (*KafkaPublisher)(nil)
	_ procurement.EventPublisher = NopPublisher{}
)

const writeTimeout = 5 * time.Second

// messageWriter parte de *kafka.Writer que usa el publicador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe cada evento como JSON en el tópico configurado.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher crea el writer con balanceo LeastBytes.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}}
}

// Publish la clave es el id de la entidad para conservar el orden por solicitud/orden.
func (p *KafkaPublisher) Publish(ctx context.Context, ev entity.WorkflowEvent) error {
	msg, err := toMessage(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("messaging: escribir evento %s: %w", ev.Type, err)
	}
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(ev entity.WorkflowEvent) (kafka.Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("messaging: serializar evento %s: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.EntityID, 10)),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
	}, nil
}

// NopPublisher descarta los eventos; se usa cuando no hay brokers configurados.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, entity.WorkflowEvent) error { return nil }
