// Package rabbitmq publishes and consumes JSON messages on a RabbitMQ topic
// exchange.
package rabbitmq

import (
	"fmt"
	"net/url"
	"strings"
)

func sanitizeURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	if !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	parsed, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
		return "", fmt.Errorf("invalid AMQP scheme: %q", parsed.Scheme)
	}
	return clean, nil
}
