package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"egasrsvp/internal/dto"
	"egasrsvp/internal/event"
	"egasrsvp/internal/invite"
	"egasrsvp/internal/model"
	"egasrsvp/internal/qr"
	"egasrsvp/pkg/validator"
)

var (
	ErrSubmit = errors.New("rsvp submission failed")

	// ErrAlreadyConfirmed is returned by Submit, together with the kept
	// confirmation, when this device has confirmed before.
	ErrAlreadyConfirmed = errors.New("rsvp already confirmed on this device")
)

// Store is the device-local slot, implemented by localcache.Cache.
type Store interface {
	Load(ctx context.Context) (*model.LocalConfirmation, error)
	Save(ctx context.Context, conf model.LocalConfirmation) error
	Clear(ctx context.Context) error
}

// Client is the guest half of the flow: it validates locally, posts the form,
// and keeps the last confirmation on the device.
type Client struct {
	baseURL string
	http    *http.Client
	cache   Store
	event   event.Event
	log     *zerolog.Logger
	now     func() time.Time
}

func New(baseURL string, cache Store, ev event.Event, log *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		cache:   cache,
		event:   ev,
		log:     log,
		now:     time.Now,
	}
}

// Submit sends g and, once the server has stored it, keeps the confirmation
// on the device. While a confirmation is kept, nothing is sent and the kept one
// is returned with ErrAlreadyConfirmed; Forget clears it. Field problems come
// back as validator.Errors, whether found locally or by the server.
func (c *Client) Submit(ctx context.Context, g model.Guest) (model.LocalConfirmation, error) {
	prev, err := c.cache.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("local confirmation unreadable, treating device as unconfirmed")
	} else if prev != nil {
		return *prev, ErrAlreadyConfirmed
	}

	g = g.Normalized()
	if err := validator.Validate(ctx, g); err != nil {
		return model.LocalConfirmation{}, err
	}

	payload := qr.Encode(qr.FromGuest(c.event.Title, g))
	body, err := json.Marshal(dto.RSVPRequest{Guest: g, QRData: payload})
	if err != nil {
		return model.LocalConfirmation{}, fmt.Errorf("marshal rsvp: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rsvp", bytes.NewReader(body))
	if err != nil {
		return model.LocalConfirmation{}, fmt.Errorf("build rsvp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.LocalConfirmation{}, fmt.Errorf("%w: %v", ErrSubmit, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.LocalConfirmation{}, fmt.Errorf("%w: read response: %v", ErrSubmit, err)
	}

	if resp.StatusCode != http.StatusOK {
		var er dto.ErrorResponse
		_ = json.Unmarshal(raw, &er)
		if resp.StatusCode == http.StatusBadRequest && len(er.Fields) > 0 {
			return model.LocalConfirmation{}, validator.Errors(er.Fields)
		}
		if er.Error == "" {
			er.Error = resp.Status
		}
		return model.LocalConfirmation{}, fmt.Errorf("%w: %s", ErrSubmit, er.Error)
	}

	var sr dto.SubmitResponse
	if err := json.Unmarshal(raw, &sr); err != nil || !sr.Success {
		return model.LocalConfirmation{}, fmt.Errorf("%w: unexpected response %q", ErrSubmit, raw)
	}

	now := c.now()
	conf := model.LocalConfirmation{
		Guest:     g,
		ID:        fmt.Sprintf("RSVP-%d", now.UnixMilli()),
		Timestamp: now,
		QRData:    payload,
	}
	if err := c.cache.Save(ctx, conf); err != nil {
		c.log.Warn().Err(err).Msg("failed to keep local confirmation")
	}

	c.log.Info().Str("server_id", sr.ID).Str("local_id", conf.ID).Msg("rsvp confirmed")
	return conf, nil
}

// Restore returns the saved confirmation and the form prefilled from it, as
// stored. ok is false when this device has not confirmed yet.
func (c *Client) Restore(ctx context.Context) (conf *model.LocalConfirmation, form model.Guest, ok bool, err error) {
	conf, err = c.cache.Load(ctx)
	if err != nil {
		return nil, model.Guest{}, false, err
	}
	if conf == nil {
		return nil, model.Guest{}, false, nil
	}
	return conf, conf.Guest, true, nil
}

// Forget drops the kept confirmation so this device can submit again.
func (c *Client) Forget(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// Invite draws the shareable image from a confirmation without contacting the
// server. It returns invite.ErrNoCode when the confirmation carries no payload.
func (c *Client) Invite(conf model.LocalConfirmation) (data []byte, fileName string, err error) {
	data, err = invite.Render(invite.Card{Name: conf.Name, Institution: conf.Institution, Event: c.event}, conf.QRData)
	if err != nil {
		return nil, "", err
	}
	return data, invite.FileName(conf.Name), nil
}
