package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects used by prefsd.
const (
	SubjectTranscriptSubmitted = "prefs.transcript.submitted"
	SubjectPreferencesExtract  = "prefs.preferences.extracted"
	SubjectPreferencesFailed   = "prefs.preferences.failed"
	SubjectRegistered          = "swarm.agent.prefsd.registered"
)

// Client is the prefsd view of the NATS bus.
type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	nc, err := nats.Connect(url, connectOptions(token, logger)...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Client{conn: nc, logger: logger}, nil
}

func connectOptions(token string, logger *slog.Logger) []nats.Option {
	opts := []nats.Option{
		nats.Name("prefsd"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	return opts
}

// PublishPreferences emits a successful extraction.
func (c *Client) PublishPreferences(evt PreferencesEvent) error {
	return c.publishJSON(SubjectPreferencesExtract, evt)
}

// PublishFailure emits a failed extraction.
func (c *Client) PublishFailure(evt FailureEvent) error {
	return c.publishJSON(SubjectPreferencesFailed, evt)
}

// Announce publishes reg on the swarm registration subject.
func (c *Client) Announce(reg Registration) error {
	return c.publishJSON(SubjectRegistered, reg)
}

func (c *Client) publishJSON(subject string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// SubscribeTranscripts delivers every prefs.transcript.submitted payload to handler.
func (c *Client) SubscribeTranscripts(handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(SubjectTranscriptSubmitted, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectTranscriptSubmitted, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", SubjectTranscriptSubmitted)
	return nil
}

// Connected reports whether the underlying connection is currently up.
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close drains subscriptions and closes the connection.
func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
