// Package ingest receives raw occupancy counts from physical sensors over
// MQTT and stores them for the sensor signal collector. The worker is
// optional; deployments without sensor hardware simply leave MQTT_URL unset.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crowd-intelligence-api/config"
	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// SensorStore is the write slice of the sensor registry the worker needs.
type SensorStore interface {
	InsertReading(ctx context.Context, reading *models.SensorReading) error
	SensorExists(ctx context.Context, sensorID string) (bool, error)
}

// Payload is the wire format published by sensor gateways.
type Payload struct {
	TS       string `json:"ts"`
	SensorID string `json:"sensor_id"`
	Count    *int   `json:"count"`
}

type Worker struct {
	store  SensorStore
	topic  string
	broker string
	client mqtt.Client
}

func NewWorker(cfg config.MQTTConfig, store SensorStore) *Worker {
	return &Worker{
		store:  store,
		topic:  cfg.Topic,
		broker: cfg.URL,
	}
}

// Start connects and subscribes; reconnects are handled by the client.
func (w *Worker) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(w.broker)
	opts.SetClientID("crowdsense-ingest-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, message mqtt.Message) {
		w.processMessage(ctx, message.Payload())
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(w.topic, 0, nil)
		token.Wait()
		if token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", w.topic).Msg("mqtt subscribe failed")
			return
		}
		log.Info().Str("topic", w.topic).Msg("sensor ingest subscribed")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	}

	w.client = mqtt.NewClient(opts)
	token := w.client.Connect()
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func (w *Worker) Stop() {
	if w.client != nil {
		w.client.Disconnect(250)
	}
}

func (w *Worker) processMessage(ctx context.Context, data []byte) {
	metrics.IngestReceived.Inc()

	reading, err := ParseReading(data)
	if err != nil {
		metrics.IngestFailed.Inc()
		log.Warn().Err(err).Msg("sensor message rejected")
		return
	}

	known, err := w.store.SensorExists(ctx, reading.SensorID)
	if err != nil {
		metrics.IngestFailed.Inc()
		log.Warn().Err(err).Str("sensor_id", reading.SensorID).Msg("sensor lookup failed")
		return
	}
	if !known {
		metrics.IngestFailed.Inc()
		log.Warn().Str("sensor_id", reading.SensorID).Msg("reading for unknown sensor dropped")
		return
	}

	if err := w.store.InsertReading(ctx, reading); err != nil {
		metrics.IngestFailed.Inc()
		log.Warn().Err(err).Str("sensor_id", reading.SensorID).Msg("sensor reading insert failed")
		return
	}
	metrics.IngestStored.Inc()
}

// ParseReading validates and converts one wire payload.
func ParseReading(data []byte) (*models.SensorReading, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if p.SensorID == "" {
		return nil, fmt.Errorf("missing sensor_id")
	}
	if p.Count == nil || *p.Count < 0 {
		return nil, fmt.Errorf("missing or negative count")
	}
	ts, err := time.Parse(time.RFC3339, p.TS)
	if err != nil {
		return nil, fmt.Errorf("invalid ts: %w", err)
	}

	return &models.SensorReading{
		SensorID:   p.SensorID,
		Count:      *p.Count,
		RecordedAt: ts.UTC(),
	}, nil
}
