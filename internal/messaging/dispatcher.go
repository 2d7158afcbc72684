// Package messaging renders templated donor messages and delivers them over
// SMS or WhatsApp, directly or through the outbound RabbitMQ queue.
package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/segyhp/pledge-callcenter/internal/notify"

	"github.com/sirupsen/logrus"
)

// RoutingKey is used for every outbound message published to the exchange.
const RoutingKey = "notification.send"

// Dispatcher sends templated messages. Delivery problems are reported in
// the result, never as an error.
type Dispatcher interface {
	IsWhatsAppAvailable() bool
	SendFromTemplate(ctx context.Context, req domain.SendRequest) *domain.SendResult
}

type TemplateStore interface {
	GetByKey(ctx context.Context, key string) (*domain.MessageTemplate, error)
}

type RecipientStore interface {
	GetByID(ctx context.Context, donorID int64) (*domain.Donor, error)
}

type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// OutboundMessage is the queued form of a send request.
type OutboundMessage struct {
	ID       string             `json:"id"`
	Request  domain.SendRequest `json:"request"`
	QueuedAt time.Time          `json:"queued_at"`
}

type TemplateDispatcher struct {
	templates  TemplateStore
	recipients RecipientStore
	sms        Transport
	whatsapp   Transport
	publisher  Publisher
	exchange   string
	log        logrus.FieldLogger
}

// NewTemplateDispatcher creates a dispatcher. publisher may be nil, in which
// case queued requests are sent immediately.
func NewTemplateDispatcher(
	templates TemplateStore,
	recipients RecipientStore,
	sms, whatsapp Transport,
	publisher Publisher,
	exchange string,
	log logrus.FieldLogger,
) *TemplateDispatcher {
	return &TemplateDispatcher{
		templates:  templates,
		recipients: recipients,
		sms:        sms,
		whatsapp:   whatsapp,
		publisher:  publisher,
		exchange:   exchange,
		log:        log,
	}
}

func (d *TemplateDispatcher) IsWhatsAppAvailable() bool {
	return d.whatsapp != nil && d.whatsapp.Available()
}

func (d *TemplateDispatcher) SendFromTemplate(ctx context.Context, req domain.SendRequest) *domain.SendResult {
	log := d.log.WithFields(logrus.Fields{
		"template_key": req.TemplateKey,
		"donor_id":     req.RecipientID,
		"source":       req.Source,
	})

	tmpl, err := d.templates.GetByKey(ctx, req.TemplateKey)
	if err != nil {
		return failed(fmt.Sprintf("template %q: %v", req.TemplateKey, err))
	}

	donor, err := d.recipients.GetByID(ctx, req.RecipientID)
	if err != nil {
		return failed(fmt.Sprintf("recipient %d: %v", req.RecipientID, err))
	}

	mode := req.PreferredChannel
	if mode == "" {
		mode = tmpl.ChannelMode
	}
	if mode == "" {
		mode = domain.ChannelModeAuto
	}

	resolution, err := notify.ResolveForDonor(domain.NotificationRequest{
		TemplateKey:              tmpl.Key,
		PreferredChannelMode:     mode,
		RecipientLanguage:        donor.PreferredLanguage,
		TemplateBodiesByLanguage: tmpl.Bodies,
	})
	if err != nil {
		return failed(err.Error())
	}

	vars := donor.TemplateVariables()
	for k, v := range req.Variables {
		vars[k] = v
	}

	if req.Queue && !req.ForceImmediate && d.publisher != nil {
		msg := OutboundMessage{
			ID:       uuid.NewString(),
			Request:  req,
			QueuedAt: time.Now().UTC(),
		}
		err := d.publisher.Publish(ctx, d.exchange, RoutingKey, msg)
		if err == nil {
			return &domain.SendResult{
				Success:   true,
				Queued:    true,
				Channel:   string(resolution.ResolvedChannel),
				Language:  resolution.ResolvedLanguage,
				MessageID: msg.ID,
			}
		}
		log.WithError(err).Warn("queue publish failed; sending immediately")
	}

	if strings.TrimSpace(donor.Phone) == "" {
		return failed("recipient has no phone number")
	}

	body := notify.Render(tmpl.Bodies[resolution.ResolvedLanguage], vars)

	switch mode {
	case domain.ChannelModeSMS:
		return d.deliver(ctx, d.sms, domain.ChannelSMS, donor.Phone, body, resolution.ResolvedLanguage, false)
	case domain.ChannelModeWhatsApp:
		if !d.IsWhatsAppAvailable() {
			return &domain.SendResult{Channel: string(domain.ChannelWhatsApp), Error: "whatsapp is not available"}
		}
		return d.deliver(ctx, d.whatsapp, domain.ChannelWhatsApp, donor.Phone, body, resolution.ResolvedLanguage, false)
	}

	if d.IsWhatsAppAvailable() {
		result := d.deliver(ctx, d.whatsapp, domain.ChannelWhatsApp, donor.Phone, body, resolution.ResolvedLanguage, false)
		if result.Success {
			return result
		}
		log.WithField("error", result.Error).Warn("whatsapp send failed; falling back to sms")
	}

	// SMS always carries the English body
	smsBody := notify.Render(tmpl.Bodies[domain.LanguageEnglish], vars)
	return d.deliver(ctx, d.sms, domain.ChannelSMS, donor.Phone, smsBody, domain.LanguageEnglish, true)
}

func (d *TemplateDispatcher) deliver(ctx context.Context, t Transport, channel domain.Channel, to, body string, lang domain.Language, fallback bool) *domain.SendResult {
	result := &domain.SendResult{
		Channel:    string(channel),
		IsFallback: fallback,
		Language:   lang,
	}

	id, err := t.Send(ctx, to, body)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.MessageID = id
	return result
}

func failed(msg string) *domain.SendResult {
	return &domain.SendResult{Error: msg}
}
