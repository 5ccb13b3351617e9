// internal/services/event_service.go
package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/models"
)

const (
	EventCarUpserted  = "car.upserted"
	EventCarsArchived = "cars.archived"
)

// CarEvent is the message published after a write to the car table.
type CarEvent struct {
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	ExternalID string          `json:"external_id,omitempty"`
	CarID      string          `json:"car_id,omitempty"`
	FuelCode   models.FuelCode `json:"fuel_type_code,omitempty"`
	PriceEUR   float64         `json:"price_eur,omitempty"`
	Archived   int64           `json:"archived,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EventService publishes car lifecycle events to Kafka. Without brokers it
// drops every event.
type EventService struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventService(cfg config.KafkaConfig) (*EventService, error) {
	if !cfg.Enabled() {
		return &EventService{}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to start kafka producer: %w", err)
	}

	return NewEventServiceWithProducer(producer, cfg.Topic), nil
}

func NewEventServiceWithProducer(producer sarama.SyncProducer, topic string) *EventService {
	return &EventService{producer: producer, topic: topic}
}

func (s *EventService) Enabled() bool {
	return s != nil && s.producer != nil
}

func (s *EventService) CarUpserted(car *models.Car) error {
	return s.publish(car.ExternalID, CarEvent{
		Type:       EventCarUpserted,
		Source:     car.Source,
		ExternalID: car.ExternalID,
		CarID:      car.ID.String(),
		FuelCode:   car.FuelTypeCode,
		PriceEUR:   car.PriceEUR,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *EventService) CarsArchived(source string, archived int64, at time.Time) error {
	return s.publish(source, CarEvent{
		Type:       EventCarsArchived,
		Source:     source,
		Archived:   archived,
		OccurredAt: at.UTC(),
	})
}

func (s *EventService) publish(key string, event CarEvent) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	logrus.WithFields(logrus.Fields{
		"type":      event.Type,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("Event published")
	return nil
}

func (s *EventService) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.producer.Close()
}
