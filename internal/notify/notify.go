package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"egasrsvp/internal/model"
)

// Notification is what a guest is told after their answer has been stored.
// It is also the body of the queue message.
type Notification struct {
	RSVPID       string       `json:"id"`
	Name         string       `json:"nome"`
	Email        string       `json:"email"`
	Confirmation model.Status `json:"confirmacao"`
}

func FromRecord(r model.RSVP) Notification {
	return Notification{
		RSVPID:       r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Confirmation: r.Confirmation,
	}
}

// Notifier delivers a Notification. Callers treat every error as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Sender is the mail side, implemented by mailer.Mailer.
type Sender interface {
	SendConfirmationEmail(name, recipientEmail string, status model.Status) error
}

// Publisher is the queue side, implemented by rabbit.Client.
type Publisher interface {
	Publish(ctx context.Context, message []byte) error
}

type mailNotifier struct {
	sender Sender
}

// Mail sends the email from the calling goroutine.
func Mail(sender Sender) Notifier {
	return &mailNotifier{sender: sender}
}

func (m *mailNotifier) Notify(_ context.Context, n Notification) error {
	return m.sender.SendConfirmationEmail(n.Name, n.Email, n.Confirmation)
}

type queueNotifier struct {
	pub Publisher
}

// Queue hands the notification to the broker; the consumer worker mails it.
func Queue(pub Publisher) Notifier {
	return &queueNotifier{pub: pub}
}

func (q *queueNotifier) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := q.pub.Publish(ctx, body); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Nop is used when no mail transport is configured.
var Nop Notifier = NotifierFunc(func(context.Context, Notification) error { return nil })
