package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/techfest-sliet/festd/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	UserRegistered     = "user.registered"
	UserVerified       = "user.verified"
	PasswordReset      = "user.password_reset"
	TeamCreated        = "team.created"
	TeamInviteSent     = "team.invite.sent"
	TeamInviteAccepted = "team.invite.accepted"
	TeamInviteRejected = "team.invite.rejected"
	AttendanceMarked   = "attendance.marked"
	PaymentRecorded    = "payment.recorded"
)

// Event payloads
type UserRegisteredEvent struct {
	UserID       int64     `json:"user_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UserVerifiedEvent struct {
	UserID     int64     `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

type TeamCreatedEvent struct {
	TeamID    int64     `json:"team_id"`
	LeaderID  int64     `json:"leader_id"`
	Name      string    `json:"name"`
	Invited   int       `json:"invited"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamInviteEvent struct {
	TeamID    int64 `json:"team_id"`
	StudentID int64 `json:"student_id"`
}

type AttendanceMarkedEvent struct {
	Kind          string    `json:"kind"` // event_individual, event_team, workshop
	ActivityID    int64     `json:"activity_id"`
	ParticipantID int64     `json:"participant_id"`
	Attended      bool      `json:"attended"`
	MarkedBy      int64     `json:"marked_by"`
	MarkedAt      time.Time `json:"marked_at"`
}

type PaymentRecordedEvent struct {
	UserID    int64  `json:"user_id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}
