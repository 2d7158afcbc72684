package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/segyhp/pledge-callcenter/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

type AuditLog interface {
	Create(ctx context.Context, log *domain.MessageLog) error
}

// QueueConsumer delivers messages that were queued by SendFromTemplate.
type QueueConsumer struct {
	dispatcher Dispatcher
	audit      AuditLog
	log        logrus.FieldLogger
}

func NewQueueConsumer(dispatcher Dispatcher, audit AuditLog, log logrus.FieldLogger) *QueueConsumer {
	return &QueueConsumer{dispatcher: dispatcher, audit: audit, log: log}
}

// Handle matches rabbitmq.Handler. Once the send has been attempted the
// message is always acknowledged, so a redelivery never reaches the donor
// twice. Audit write failures are only logged.
func (c *QueueConsumer) Handle(ctx context.Context, body []byte) error {
	var msg OutboundMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: decoding outbound message: %v", rabbitmq.ErrPermanent, err)
	}

	req := msg.Request
	req.ForceImmediate = true

	result := c.dispatcher.SendFromTemplate(ctx, req)

	log := c.log.WithFields(logrus.Fields{
		"message_id":   msg.ID,
		"template_key": req.TemplateKey,
		"donor_id":     req.RecipientID,
		"channel":      result.Channel,
	})
	if !result.Success {
		log.WithField("error", result.Error).Warn("queued message failed")
	} else {
		log.Info("queued message delivered")
	}

	if c.audit == nil {
		return nil
	}

	status := domain.MessageStatusSent
	if !result.Success {
		status = domain.MessageStatusFailed
	}
	entry := &domain.MessageLog{
		ID:                uuid.New(),
		DonorID:           req.RecipientID,
		TemplateKey:       req.TemplateKey,
		Source:            req.Source,
		Channel:           result.Channel,
		Language:          string(result.Language),
		TransportFallback: result.IsFallback,
		Status:            status,
		Error:             result.Error,
		ProviderMessageID: result.MessageID,
		CreatedAt:         time.Now().UTC(),
	}
	if err := c.audit.Create(ctx, entry); err != nil {
		log.WithError(err).Error("failed to write message audit log")
	}
	return nil
}
