// Package push wraps the Web Push delivery provider behind a narrow Gateway
// interface so the notification and digest layers can be tested without
// network I/O.
//
// Delivery is best-effort: callers classify failures only far enough to
// decide endpoint deactivation. The provider reporting 404 or 410 means the
// subscription is permanently gone; everything else is a transient delivery
// failure that is logged and dropped (no retry).
package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"

	"github.com/alevras/go-match-backend/internal/config"
	"github.com/alevras/go-match-backend/internal/domain"
)

// ErrEndpointGone signals that the push service reported the subscription as
// permanently undeliverable. Callers deactivate the endpoint and move on.
var ErrEndpointGone = errors.New("push endpoint gone")

// Payload types carried in the "type" field of every push body.
const (
	TypeMatch        = "match"
	TypeDigestUser   = "digest_user"
	TypeDigestGlobal = "digest_global"
)

// Payload is the provider-agnostic JSON body of every push notification.
type Payload struct {
	Type  string         `json:"type"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	URL   string         `json:"url,omitempty"`
	Icon  string         `json:"icon,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Gateway sends one payload to one subscription. Implementations must return
// ErrEndpointGone (possibly wrapped) when the provider reports the endpoint
// as no longer valid.
type Gateway interface {
	Send(ctx context.Context, sub domain.PushSubscription, p Payload) error
}

// WebPushGateway delivers through the Web Push protocol with VAPID
// authentication. Credentials are injected at construction.
type WebPushGateway struct {
	cfg    config.PushConfig
	client *http.Client
}

// NewWebPushGateway builds a gateway from static credentials.
func NewWebPushGateway(cfg config.PushConfig) *WebPushGateway {
	return &WebPushGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send marshals the payload and posts it to the subscription's endpoint.
// 404 and 410 map to ErrEndpointGone; other non-2xx statuses surface as a
// generic delivery error.
func (g *WebPushGateway) Send(ctx context.Context, sub domain.PushSubscription, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      g.client,
		Subscriber:      g.cfg.Subscriber,
		VAPIDPublicKey:  g.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: g.cfg.VAPIDPrivateKey,
		TTL:             g.cfg.TTL,
	})
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrEndpointGone
	case resp.StatusCode >= 400:
		log.Warn().
			Int("status", resp.StatusCode).
			Str("user_id", sub.UserID).
			Msg("push delivery failed")
		return errors.New("push delivery failed: " + resp.Status)
	default:
		return nil
	}
}
