package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/rs/zerolog"

	"egasrsvp/internal/model"
	"egasrsvp/internal/repo"
)

// Admin gates list and delete behind one shared secret. There are no sessions:
// every call checks the secret again.
type Admin struct {
	repo   repo.Repository
	secret string
	log    *zerolog.Logger
}

func NewAdmin(r repo.Repository, secret string, log *zerolog.Logger) *Admin {
	return &Admin{repo: r, secret: secret, log: log}
}

func (a *Admin) Authorize(secret string) error {
	if secret == "" || a.secret == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.secret)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// ListAll returns every record, newest first.
func (a *Admin) ListAll(ctx context.Context, secret string) ([]model.RSVP, error) {
	if err := a.Authorize(secret); err != nil {
		return nil, err
	}
	rsvps, err := a.repo.ListRSVPs(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list rsvps")
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return rsvps, nil
}

// DeleteAll removes every record and reports how many there were.
func (a *Admin) DeleteAll(ctx context.Context, secret string) (int, error) {
	if err := a.Authorize(secret); err != nil {
		return 0, err
	}
	n, err := a.repo.DeleteAllRSVPs(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to delete rsvps")
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	a.log.Info().Int("deleted", n).Msg("rsvp store reset")
	return n, nil
}
