package consumerWorker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"egasrsvp/internal/notify"
)

// Consumer is implemented by rabbit.Client.
type Consumer interface {
	Consume(handler func([]byte) error) error
}

type Reader struct {
	RMQ    Consumer
	sender notify.Sender
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq Consumer, sender notify.Sender) *Reader {
	return &Reader{
		RMQ:    rmq,
		sender: sender,
		done:   make(chan struct{}),
	}
}

// Handle mails one queued notification. An undecodable body is returned as an
// error so the consumer drops it; mail failures are only logged.
func (r *Reader) Handle(body []byte) error {
	var msg notify.Notification
	if err := json.Unmarshal(body, &msg); err != nil {
		zlog.Logger.Error().
			Err(err).
			Msgf("Failed to unmarshal message: %s", string(body))
		return fmt.Errorf("decode notification: %w", err)
	}

	zlog.Logger.Info().
		Str("rsvp_id", msg.RSVPID).
		Str("email", msg.Email).
		Msg("Received notification from RabbitMQ")

	if msg.Email == "" {
		zlog.Logger.Warn().Str("rsvp_id", msg.RSVPID).Msg("Notification without recipient, skipping email")
		return nil
	}

	if err := r.sender.SendConfirmationEmail(msg.Name, msg.Email, msg.Confirmation); err != nil {
		zlog.Logger.Warn().
			Err(err).
			Str("rsvp_id", msg.RSVPID).
			Msg("Failed to send confirmation email")
		return nil
	}

	zlog.Logger.Info().
		Str("email", msg.Email).
		Str("rsvp_id", msg.RSVPID).
		Msg("Confirmation email sent successfully")
	return nil
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("RabbitMQ Reader started")

	go func() {
		defer close(r.done)

		if err := r.RMQ.Consume(r.Handle); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("RabbitMQ Reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
