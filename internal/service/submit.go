package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"egasrsvp/internal/event"
	"egasrsvp/internal/model"
	"egasrsvp/internal/notify"
	"egasrsvp/internal/qr"
	"egasrsvp/internal/repo"
	"egasrsvp/pkg/validator"
)

const defaultNotifyTimeout = 30 * time.Second

var (
	ErrPersistence  = errors.New("rsvp store failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries one message per rejected json field.
type ValidationError struct {
	Fields validator.Errors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

// Submitter accepts guest answers: validate, store, then notify in the background.
type Submitter struct {
	repo     repo.Repository
	notifier notify.Notifier
	event    event.Event
	log      *zerolog.Logger

	now           func() time.Time
	notifyTimeout time.Duration

	mu   sync.Mutex
	last time.Time
	wg   sync.WaitGroup
}

func NewSubmitter(r repo.Repository, n notify.Notifier, ev event.Event, log *zerolog.Logger) *Submitter {
	if n == nil {
		n = notify.Nop
	}
	return &Submitter{
		repo:          r,
		notifier:      n,
		event:         ev,
		log:           log,
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
}

// Check validates g without any side effect.
func Check(ctx context.Context, g model.Guest) error {
	if err := validator.Validate(ctx, g); err != nil {
		var fields validator.Errors
		if errors.As(err, &fields) {
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

// Submit stores one new record and returns its id. clientPayload is the QR
// payload the browser computed; the stored one is always rebuilt from the fields.
func (s *Submitter) Submit(ctx context.Context, g model.Guest, clientPayload string) (string, error) {
	g = g.Normalized()
	if err := Check(ctx, g); err != nil {
		return "", err
	}

	payload := qr.Encode(qr.FromGuest(s.event.Title, g))
	if clientPayload != "" && clientPayload != payload {
		s.log.Debug().Str("email", g.Email).Msg("Client QR payload differs from the stored one, replacing")
	}

	rsvp := &model.RSVP{
		Guest:     g,
		QRData:    payload,
		CreatedAt: s.nextTimestamp(),
	}
	if err := s.repo.AddRSVP(ctx, rsvp); err != nil {
		s.log.Error().Err(err).Str("email", g.Email).Msg("failed to store rsvp")
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.log.Info().Str("rsvp_id", rsvp.ID).Str("confirmacao", string(g.Confirmation)).Msg("rsvp stored successfully")

	s.notify(ctx, notify.FromRecord(*rsvp))
	return rsvp.ID, nil
}

func (s *Submitter) notify(ctx context.Context, n notify.Notification) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(nctx, n); err != nil {
			s.log.Warn().Err(err).Str("rsvp_id", n.RSVPID).Msg("Failed to send notification on e-mail")
		}
	}()
}

// Wait blocks until every pending notification has finished.
func (s *Submitter) Wait() {
	s.wg.Wait()
}

// nextTimestamp keeps creation times strictly increasing within the process,
// at the microsecond precision PostgreSQL stores.
func (s *Submitter) nextTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}
