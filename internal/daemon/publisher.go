package daemon

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/soomaali-corpus/corpusmetrics/internal/aggregate"
	"github.com/soomaali-corpus/corpusmetrics/internal/config"
	"github.com/soomaali-corpus/corpusmetrics/internal/retry"
)

// Publisher pushes aggregate summaries to NATS so downstream consumers
// (dashboards, alerting) see corpus health without polling the filesystem.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS using the daemon configuration.
// Callers should check cfg.Enabled before constructing.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("summary publishing is disabled")
	}

	// The daemon often starts alongside the broker, so tolerate a slow boot.
	policy := retry.NewPolicy(retry.BackoffExponential, time.Second, 15*time.Second, 3)
	var conn *nats.Conn
	err := retry.Do(policy, time.Sleep, func() error {
		var dialErr error
		conn, dialErr = nats.Connect(cfg.URL)
		return dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject)

	return &Publisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishSummary publishes an aggregate summary as JSON.
func (p *Publisher) PublishSummary(summary aggregate.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}

	slog.Debug("Published aggregate summary",
		"subject", p.subject,
		"sources", len(summary.Sources),
		"total_volume", summary.TotalVolume)

	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		slog.Error("Error draining NATS connection", "error", err)
	}
}
