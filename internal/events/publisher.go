// Package events publishes audit entries to an optional NATS subject so
// downstream consumers can follow the activity stream. Publishing is
// best-effort and never blocks or fails a mutation.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/models"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "taskdesk.activity"

// ActivityEvent is the wire shape published for each recorded audit entry.
type ActivityEvent struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	LoggedAt    time.Time `json:"logged_at"`
}

// Publisher emits activity events over a NATS connection.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewPublisher constructs an activity event publisher.
func NewPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}

	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "activity_publisher").Logger(),
	}
}

// PublishActivity serializes the entry and publishes it on the configured
// subject.
func (p *Publisher) PublishActivity(entry models.ActivityLog) error {
	if p == nil || p.conn == nil {
		return nil
	}

	payload, err := json.Marshal(ActivityEvent{
		ID:          entry.ID,
		UserID:      entry.UserID,
		Action:      entry.Action,
		Description: entry.Description,
		LoggedAt:    entry.LoggedAt,
	})
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("publish failed")
		return err
	}

	return nil
}
