package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/segyhp/pledge-callcenter/internal/config"
	"github.com/segyhp/pledge-callcenter/internal/domain"
)

var ErrTransportNotConfigured = errors.New("transport not configured")

// Transport delivers a rendered message body to a phone number.
type Transport interface {
	Available() bool
	Send(ctx context.Context, to, body string) (messageID string, err error)
}

// HTTPGateway posts messages to an SMS or WhatsApp provider's JSON API.
type HTTPGateway struct {
	channel domain.Channel
	url     string
	token   string
	sender  string
	client  *http.Client
}

func NewHTTPGateway(channel domain.Channel, url, token, sender string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		channel: channel,
		url:     url,
		token:   token,
		sender:  sender,
		client:  &http.Client{Timeout: timeout},
	}
}

type gatewayRequest struct {
	Channel string `json:"channel"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Body    string `json:"body"`
}

type gatewayResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

func (g *HTTPGateway) Available() bool {
	return g.url != ""
}

func (g *HTTPGateway) Send(ctx context.Context, to, body string) (string, error) {
	payload, err := json.Marshal(gatewayRequest{
		Channel: string(g.channel),
		From:    g.sender,
		To:      to,
		Body:    body,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s gateway: %w", g.channel, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%s gateway: reading response: %w", g.channel, err)
	}

	var out gatewayResponse
	if len(raw) > 0 {
		// Providers that answer with plain text still count as delivered on 2xx
		_ = json.Unmarshal(raw, &out)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != "" {
			return "", fmt.Errorf("%s gateway: status %d: %s", g.channel, resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("%s gateway: status %d", g.channel, resp.StatusCode)
	}

	return out.MessageID, nil
}

type noopTransport struct {
	channel domain.Channel
}

func (n noopTransport) Available() bool { return false }

func (n noopTransport) Send(ctx context.Context, to, body string) (string, error) {
	return "", fmt.Errorf("%s: %w", n.channel, ErrTransportNotConfigured)
}

// NewTransports builds the SMS and WhatsApp transports from configuration.
// Unconfigured channels get a transport that always reports unavailable.
func NewTransports(cfg config.MessagingConfig) (sms Transport, whatsapp Transport) {
	sms = noopTransport{channel: domain.ChannelSMS}
	if cfg.SMSGatewayURL != "" {
		sms = NewHTTPGateway(domain.ChannelSMS, cfg.SMSGatewayURL, cfg.SMSGatewayToken, cfg.SMSSender, cfg.GatewayTimeout)
	}

	whatsapp = noopTransport{channel: domain.ChannelWhatsApp}
	if cfg.WhatsAppEnabled && cfg.WhatsAppGatewayURL != "" {
		whatsapp = NewHTTPGateway(domain.ChannelWhatsApp, cfg.WhatsAppGatewayURL, cfg.WhatsAppGatewayToken, "", cfg.GatewayTimeout)
	}
	return sms, whatsapp
}
