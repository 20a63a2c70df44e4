package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/logger"
	apperrors "beacon/pkg/errors"
	"beacon/pkg/logging"
	"beacon/pkg/models"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) PublishAlert(ctx context.Context, topic string, alert models.SanitizedAlert) error {
	return p.publish(ctx, topic, alert.TenantID+alert.Title, alert)
}

func (p *KafkaProducer) PublishRequest(ctx context.Context, topic string, req models.AlertRequest) error {
	return p.publish(ctx, topic, req.DedupKey(), req)
}

func (p *KafkaProducer) publish(ctx context.Context, topic, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: body,
			Time:  time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	wg          sync.WaitGroup
	reader      *kafka.Reader
	logger      logger.Logger
	dlqProducer Producer
	serviceName string
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	consumer := &KafkaConsumer{
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}

	if cfg.DLQTopic != "" {
		consumer.dlqProducer = NewKafkaProducer(cfg, log)
	}

	return consumer
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

// Consume feeds alert requests from topic into handler until ctx is done.
// Handler errors are not retried here: the dispatch engine applies its own
// severity policy, and re-running a failed dispatch would distort the
// CRITICAL attempt accounting. Failed requests go to the DLQ instead.
func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
		"service_name", c.serviceName,
	)

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		consumeCtx := logging.WithServiceName(ctx, c.serviceName)
		c.logger.InfowCtx(consumeCtx, "Started consuming",
			"topic", topic,
		)

		for {
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.InfowCtx(consumeCtx, "Stopped consuming",
						"topic", topic,
						"reason", "context canceled",
					)
					return
				}
				c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message",
					"error", err,
					"topic", topic,
				)
				time.Sleep(time.Second)
				continue
			}

			var req models.AlertRequest
			if err := json.Unmarshal(m.Value, &req); err != nil {
				c.logger.ErrorwCtx(consumeCtx, "Failed to unmarshal alert request",
					"error", err,
					"topic", topic,
				)
				_ = c.reader.CommitMessages(ctx, m)
				continue
			}

			msgCtx := logging.WithAlertID(consumeCtx, uuid.New().String())
			msgCtx = logging.WithTenantID(msgCtx, req.TenantID)
			if req.CorrelationID != "" {
				msgCtx = logging.WithCorrelationID(msgCtx, req.CorrelationID)
			}

			if err := c.handle(msgCtx, req, handler); err != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to dispatch alert",
					"error", err,
					"topic", topic,
				)
				if c.dlqProducer != nil && c.cfg.DLQTopic != "" {
					if dlqErr := c.sendToDLQ(msgCtx, req, err, topic); dlqErr != nil {
						c.logger.ErrorwCtx(msgCtx, "Failed to send alert to DLQ",
							"error", dlqErr,
							"topic", topic,
						)
					}
				}
			}

			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to commit message",
					"error", err,
					"topic", topic,
				)
			}
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

func (c *KafkaConsumer) handle(ctx context.Context, req models.AlertRequest, handler HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.RecoverPanic(r)
		}
	}()
	return handler(ctx, req)
}

func (c *KafkaConsumer) Close() error {
	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}
	if c.dlqProducer != nil {
		if closeErr := c.dlqProducer.Close(); closeErr != nil {
			if err == nil {
				err = closeErr
			}
		}
	}
	c.wg.Wait()
	return err
}

func (c *KafkaConsumer) sendToDLQ(ctx context.Context, req models.AlertRequest, originalErr error, sourceTopic string) error {
	if req.Metadata == nil {
		req.Metadata = make(map[string]string)
	}
	req.Metadata["dlq_reason"] = originalErr.Error()
	req.Metadata["dlq_source_topic"] = sourceTopic
	req.Metadata["dlq_timestamp"] = time.Now().Format(time.RFC3339)

	if err := c.dlqProducer.PublishRequest(ctx, c.cfg.DLQTopic, req); err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	c.logger.InfowCtx(ctx, "Alert sent to DLQ",
		"source_topic", sourceTopic,
		"dlq_topic", c.cfg.DLQTopic,
		"reason", originalErr.Error(),
	)

	return nil
}
