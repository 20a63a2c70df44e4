package channel

import (
	"context"
	"time"

	"beacon/internal/broker"
	"beacon/internal/constants"
	"beacon/pkg/metrics"
	"beacon/pkg/models"
)

// EmailQueueChannel hands alerts to the email delivery queue. Rendering
// and SMTP are downstream concerns; a successful publish is a successful
// send from this engine's point of view.
type EmailQueueChannel struct {
	producer broker.Producer
	topic    string
}

func NewEmailQueueChannel(producer broker.Producer, topic string) *EmailQueueChannel {
	if topic == "" {
		topic = constants.DefaultEmailTopic
	}
	return &EmailQueueChannel{producer: producer, topic: topic}
}

func (c *EmailQueueChannel) Name() string {
	return constants.ChannelEmail
}

func (c *EmailQueueChannel) Send(ctx context.Context, alert models.SanitizedAlert) error {
	start := time.Now()
	err := c.producer.PublishAlert(ctx, c.topic, alert)
	metrics.ObserveChannelSend(c.Name(), time.Since(start), err)
	return err
}

var _ Channel = (*EmailQueueChannel)(nil)
