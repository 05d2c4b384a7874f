package main

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logs_ingest"
)

type eventHubConsumerConfig struct {
	Brokers          string
	ConnectionString string
	Topic            string
	Group            string
	BatchSize        int
	BatchWait        time.Duration
}

// eventHubConsumer reads log events from the Event Hubs Kafka-compatible
// endpoint and feeds them to the pipeline in bounded batches, standing in
// for the Functions host in standalone deployments.
type eventHubConsumer struct {
	consumer  *kafka.Consumer
	processor logProcessor
	log       logger.Logger
	batchSize int
	batchWait time.Duration
}

func newEventHubConsumer(cfg eventHubConsumerConfig, processor logProcessor, log logger.Logger) (*eventHubConsumer, error) {
	configMap := kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"group.id":           cfg.Group,
		"auto.offset.reset":  "latest",
		"enable.auto.commit": true,
		"security.protocol":  "SASL_SSL",
		"sasl.mechanisms":    "PLAIN",
		"sasl.username":      "$ConnectionString",
		"sasl.password":      cfg.ConnectionString,
	}

	consumer, err := kafka.NewConsumer(&configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	if err := consumer.Subscribe(cfg.Topic, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", cfg.Topic, err)
	}

	return &eventHubConsumer{
		consumer:  consumer,
		processor: processor,
		log:       log,
		batchSize: cfg.BatchSize,
		batchWait: cfg.BatchWait,
	}, nil
}

// Run consumes until the context is cancelled. A full batch or an idle
// period flushes one processing invocation; invocation failures are logged
// and consumption continues, matching how the Functions host treats a
// failed invocation.
func (c *eventHubConsumer) Run(ctx context.Context) error {
	batch := make([]logs_ingest.RawEvent, 0, c.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := c.processor.ProcessLogs(ctx, batch); err != nil {
			c.log.Error("Invocation failed: ", err.Error())
		}
		batch = make([]logs_ingest.RawEvent, 0, c.batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil
		default:
		}

		msg, err := c.consumer.ReadMessage(c.batchWait)
		if err != nil {
			if kafkaErr, ok := err.(kafka.Error); ok && kafkaErr.Code() == kafka.ErrTimedOut {
				flush()
				continue
			}
			if kafkaErr, ok := err.(kafka.Error); ok && !kafkaErr.IsFatal() {
				c.log.Error("Transient consumer error: ", err.Error())
				continue
			}
			flush()
			return fmt.Errorf("consumer failed: %w", err)
		}

		event := logs_ingest.RawEvent{Body: msg.Value}
		if msg.TimestampType != kafka.TimestampNotAvailable {
			event.EnqueuedTime = msg.Timestamp
		}
		batch = append(batch, event)

		if len(batch) >= c.batchSize {
			flush()
		}
	}
}

func (c *eventHubConsumer) Close() {
	_ = c.consumer.Close()
}
