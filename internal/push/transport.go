package push

import (
	"fmt"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"push-campaign-backend/config"
	"push-campaign-backend/internal/model"
)

// Result classifies the outcome of one send attempt.
type Result int

const (
	// ResultSuccess means the push service accepted the message.
	ResultSuccess Result = iota
	// ResultExpired means the endpoint is permanently gone (404/410) and the
	// subscriber should be deactivated by the caller.
	ResultExpired
	// ResultTransient means a push-service or network error; the subscriber
	// may still be reachable later.
	ResultTransient
)

// Outcome is the classified result of delivering one payload to one endpoint.
type Outcome struct {
	Result Result
	Detail string
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender implementation using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Transport signs and delivers payloads to subscriber endpoints and
// classifies the response. It performs no storage mutation: acting on an
// Expired outcome is the orchestrator's job.
type Transport struct {
	options *webpush.Options
	sender  Sender
}

// NewTransport builds a Transport from the process-wide VAPID configuration.
// The options and HTTP client are constructed once and read-only afterwards.
func NewTransport(cfg *config.PushConfig) *Transport {
	return &Transport{
		options: &webpush.Options{
			HTTPClient:      &http.Client{Timeout: cfg.SendTimeout},
			Subscriber:      cfg.Subject,
			TTL:             cfg.TTL,
			Urgency:         webpush.UrgencyNormal,
			VAPIDPublicKey:  cfg.PublicKey,
			VAPIDPrivateKey: cfg.PrivateKey,
		},
		sender: &WebPushSender{},
	}
}

// NewTransportWithSender is used by tests to substitute the Sender.
func NewTransportWithSender(cfg *config.PushConfig, sender Sender) *Transport {
	t := NewTransport(cfg)
	t.sender = sender
	return t
}

// Send delivers one serialized payload to one subscriber's endpoint.
func (t *Transport) Send(sub *model.Subscriber, payload []byte) Outcome {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: NormalizeKey(sub.P256DH),
			Auth:   NormalizeKey(sub.Auth),
		},
	}

	resp, err := t.sender.Send(payload, wpSub, t.options)
	if err != nil {
		return Outcome{Result: ResultTransient, Detail: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return Outcome{Result: ResultExpired, Detail: fmt.Sprintf("endpoint gone (HTTP %d)", resp.StatusCode)}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Outcome{Result: ResultSuccess}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Outcome{Result: ResultTransient, Detail: fmt.Sprintf("push service returned HTTP %d: %s", resp.StatusCode, body)}
	}
}
