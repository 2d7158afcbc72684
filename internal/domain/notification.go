package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChannelMode is a template's configured delivery mode.
type ChannelMode string

const (
	ChannelModeAuto     ChannelMode = "auto"
	ChannelModeSMS      ChannelMode = "sms"
	ChannelModeWhatsApp ChannelMode = "whatsapp"
)

// Channel is the transport a message actually goes out on.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Language is a supported message language.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageAmharic  Language = "am"
	LanguageTigrinya Language = "ti"
)

// Supported reports whether l has template bodies in this system.
func (l Language) Supported() bool {
	switch l {
	case LanguageEnglish, LanguageAmharic, LanguageTigrinya:
		return true
	}
	return false
}

// Name is the human readable language name used in fallback reasons.
func (l Language) Name() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageAmharic:
		return "Amharic"
	case LanguageTigrinya:
		return "Tigrinya"
	}
	return string(l)
}

// MessageTemplate is a parametrized, multi-language message body.
type MessageTemplate struct {
	Key         string              `json:"key"`
	Name        string              `json:"name"`
	ChannelMode ChannelMode         `json:"channel_mode"`
	Bodies      map[Language]string `json:"bodies"`
	Active      bool                `json:"active"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NotificationRequest is the input to the channel resolver.
type NotificationRequest struct {
	TemplateKey              string              `json:"template_key"`
	PreferredChannelMode     ChannelMode         `json:"preferred_channel_mode"`
	RecipientLanguage        Language            `json:"recipient_language"`
	TemplateBodiesByLanguage map[Language]string `json:"template_bodies_by_language"`
}

// NotificationResolution is the resolver's decision.
type NotificationResolution struct {
	ResolvedChannel  Channel  `json:"resolved_channel"`
	ResolvedLanguage Language `json:"resolved_language"`
	UsedFallback     bool     `json:"used_fallback"`
	FallbackReason   string   `json:"fallback_reason,omitempty"`
}

// SendRequest is what the messaging dispatcher is asked to deliver.
type SendRequest struct {
	TemplateKey      string            `json:"template_key"`
	RecipientID      int64             `json:"recipient_id"`
	Variables        map[string]string `json:"variables,omitempty"`
	PreferredChannel ChannelMode       `json:"preferred_channel,omitempty"`
	Source           string            `json:"source"`
	Queue            bool              `json:"queue"`
	ForceImmediate   bool              `json:"force_immediate"`
}

// SendResult is reported back by the dispatcher. Transport failures are
// carried in Error rather than returned as Go errors.
type SendResult struct {
	Success    bool     `json:"success"`
	Channel    string   `json:"channel"`
	IsFallback bool     `json:"is_fallback"`
	Error      string   `json:"error,omitempty"`
	Language   Language `json:"language,omitempty"`
	Queued     bool     `json:"queued"`
	MessageID  string   `json:"message_id,omitempty"`
}

const (
	MessageStatusSent   = "sent"
	MessageStatusQueued = "queued"
	MessageStatusFailed = "failed"
)

// MessageLog is the audit record written for every send attempt.
type MessageLog struct {
	ID                uuid.UUID `json:"id" db:"id"`
	DonorID           int64     `json:"donor_id" db:"donor_id"`
	TemplateKey       string    `json:"template_key" db:"template_key"`
	Source            string    `json:"source" db:"source"`
	PreviewChannel    string    `json:"preview_channel" db:"preview_channel"`
	Channel           string    `json:"channel" db:"channel"`
	Language          string    `json:"language" db:"language"`
	LanguageFallback  bool      `json:"language_fallback" db:"language_fallback"`
	TransportFallback bool      `json:"transport_fallback" db:"transport_fallback"`
	FallbackReason    string    `json:"fallback_reason" db:"fallback_reason"`
	Status            string    `json:"status" db:"status"`
	Error             string    `json:"error" db:"error"`
	ProviderMessageID string    `json:"provider_message_id" db:"provider_message_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type SendNotificationRequest struct {
	TemplateKey      string            `json:"template_key" validate:"required"`
	DonorID          int64             `json:"donor_id" validate:"required,gt=0"`
	PreferredChannel ChannelMode       `json:"preferred_channel" validate:"omitempty,oneof=auto sms whatsapp"`
	Variables        map[string]string `json:"variables"`
	Queue            bool              `json:"queue"`
	ForceImmediate   bool              `json:"force_immediate"`
	Source           string            `json:"source"`
}

type SendNotificationResponse struct {
	Preview *NotificationResolution `json:"preview"`
	Result  *SendResult             `json:"result"`
	Log     *MessageLog             `json:"log"`
}

type NotificationPreview struct {
	TemplateKey       string                  `json:"template_key"`
	DonorID           int64                   `json:"donor_id"`
	Template          *NotificationResolution `json:"template"`
	Donor             *NotificationResolution `json:"donor"`
	PreviewText       string                  `json:"preview_text"`
	WhatsAppAvailable bool                    `json:"whatsapp_available"`
}
