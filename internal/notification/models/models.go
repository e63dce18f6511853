package models

import "time"

// Status is the delivery state of an outbox message.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusDead    Status = "dead"
)

// InvitationPayload is everything the invitation mail template needs. It is
// stored as JSON so a message can be rendered long after the request ended.
type InvitationPayload struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	ProjectID    int64  `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	Token        string `json:"token"`
	AcceptURL    string `json:"accept_url"`
}

// Message is one row of the notification outbox.
type Message struct {
	ID            int64
	InvitationID  int64
	Recipient     string
	Payload       InvitationPayload
	Status        Status
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
	CreatedAt     time.Time
	SentAt        *time.Time
}
