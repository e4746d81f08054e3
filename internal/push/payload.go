package push

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Push services reject bodies around the 4 KB mark; stay under it with some
// headroom for the encryption overhead added on the wire.
const maxPayloadBytes = 3800

// ErrPayloadTooLarge is returned when the serialized notification exceeds
// what push services accept.
var ErrPayloadTooLarge = errors.New("push: serialized payload too large")

// Payload is the notification content shown by the browser's service worker.
type Payload struct {
	Title              string         `json:"title"`
	Body               string         `json:"body,omitempty"`
	Icon               string         `json:"icon,omitempty"`
	Image              string         `json:"image,omitempty"`
	Badge              string         `json:"badge,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	URL                string         `json:"url,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
	RequireInteraction bool           `json:"requireInteraction,omitempty"`
	Vibrate            []int          `json:"vibrate,omitempty"`
	Timestamp          int64          `json:"timestamp,omitempty"`
}

// Marshal serializes the payload, defaulting the timestamp to now (in
// milliseconds, the unit Notification.timestamp uses) when unset.
func (p Payload) Marshal(now time.Time) ([]byte, error) {
	if p.Timestamp == 0 {
		p.Timestamp = now.UnixMilli()
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if len(b) > maxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}
	return b, nil
}

var keyReplacer = strings.NewReplacer("+", "-", "/", "_")

// NormalizeKey converts key material that may arrive in standard base64 from
// the browser API into the unpadded URL-safe form the signing step requires.
func NormalizeKey(k string) string {
	return strings.TrimRight(keyReplacer.Replace(strings.TrimSpace(k)), "=")
}
