package notification

import "time"

// Notification is the persisted trace of an outbound message. Rows are
// written before delivery is attempted, so the log survives mail outages.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"userId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	Record(message string, userID *int64) error
	List() ([]Notification, error)
}

// Email is one outbound message.
type Email struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(email Email) error
}
