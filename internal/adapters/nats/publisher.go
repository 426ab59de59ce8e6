package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
)

const streamName = "SURVEYOR_ASSESSMENTS"

// Publisher implements ports.EventPublisher using NATS JetStream.
// Downstream consumers (CRM sync, quote engines) subscribe to completed
// assessments.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the assessment stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"surveyor.assessment.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishAssessmentCompleted emits the full assessment result keyed by
// postcode.
func (p *Publisher) PublishAssessmentCompleted(ctx context.Context, result *domain.AssessmentResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	subject := "surveyor.assessment.completed." + subjectToken(result.Postcode)
	_, err = p.js.Publish(subject, data)
	return err
}

// Close drains and closes the connection.
// Connected reports whether the underlying NATS connection is live.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// subjectToken makes a postcode safe for use as a NATS subject token.
func subjectToken(postcode string) string {
	return strings.ReplaceAll(strings.TrimSpace(postcode), " ", "_")
}

var _ ports.EventPublisher = (*Publisher)(nil)
