package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"egasrsvp/internal/calendar"
	"egasrsvp/internal/dto"
	"egasrsvp/internal/event"
	"egasrsvp/internal/export"
	"egasrsvp/internal/invite"
	"egasrsvp/internal/model"
	"egasrsvp/internal/qr"
	"egasrsvp/pkg/validator"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024

	// maxBodyBytes bounds the JSON bodies of the submission and invite endpoints.
	maxBodyBytes = 16 << 10
)

// Service is the HTTP surface; every method is a gin handler.
type Service interface {
	SubmitRSVP(ctx *ginext.Context)
	ListRSVPs(ctx *ginext.Context)
	ResetRSVPs(ctx *ginext.Context)
	ExportCSV(ctx *ginext.Context)
	Stats(ctx *ginext.Context)
	EventInfo(ctx *ginext.Context)
	CalendarICS(ctx *ginext.Context)
	GoogleCalendar(ctx *ginext.Context)
	Share(ctx *ginext.Context)
	Invite(ctx *ginext.Context)
	QRCode(ctx *ginext.Context)
}

type service struct {
	submitter *Submitter
	admin     *Admin
	event     event.Event
	log       *zerolog.Logger
	now       func() time.Time
}

func NewService(submitter *Submitter, admin *Admin, ev event.Event, logger *zerolog.Logger) Service {
	return &service{
		submitter: submitter,
		admin:     admin,
		event:     ev,
		log:       logger,
		now:       time.Now,
	}
}

// decodeStrict reads a single JSON value of at most maxBodyBytes and rejects
// fields the type does not declare.
func decodeStrict(ctx *ginext.Context, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after json body")
	}
	return nil
}

func (s *service) SubmitRSVP(ctx *ginext.Context) {
	var req dto.RSVPRequest
	if err := decodeStrict(ctx, &req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse rsvp request")
		dto.BadResponseError(ctx, dto.ErrInvalidData, nil)
		return
	}

	id, err := s.submitter.Submit(ctx.Request.Context(), req.Guest, req.QRData)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.log.Debug().Msgf("validation failed: %v", verr)
			dto.BadResponseError(ctx, dto.ErrInvalidData, verr.Fields)
			return
		}
		dto.InternalServerError(ctx, dto.ErrProcessRSVP)
		return
	}

	dto.SuccessResponse(ctx, dto.SubmitResponse{ID: id, Success: true})
}

// adminRecords runs the secret check and list shared by the read-only admin endpoints.
func (s *service) adminRecords(ctx *ginext.Context) ([]model.RSVP, bool) {
	rsvps, err := s.admin.ListAll(ctx.Request.Context(), ctx.Query("secret"))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			dto.UnauthorizedError(ctx)
			return nil, false
		}
		dto.InternalServerError(ctx, dto.ErrFetchRSVPs)
		return nil, false
	}
	return rsvps, true
}

func (s *service) ListRSVPs(ctx *ginext.Context) {
	rsvps, ok := s.adminRecords(ctx)
	if !ok {
		return
	}
	if q := ctx.Query("q"); q != "" {
		rsvps = export.Filter(rsvps, q)
	}
	dto.SuccessResponse(ctx, dto.RSVPListResponse{RSVPs: rsvps})
}

func (s *service) ResetRSVPs(ctx *ginext.Context) {
	n, err := s.admin.DeleteAll(ctx.Request.Context(), ctx.Query("secret"))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			dto.UnauthorizedError(ctx)
			return
		}
		dto.InternalServerError(ctx, dto.ErrInternal)
		return
	}

	msg := dto.MsgAlreadyEmpty
	if n > 0 {
		msg = fmt.Sprintf("Successfully deleted %d records", n)
	}
	dto.SuccessResponse(ctx, dto.ResetResponse{Message: msg, Success: true, DeletedCount: n})
}

func (s *service) ExportCSV(ctx *ginext.Context) {
	rsvps, ok := s.adminRecords(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rsvps); err != nil {
		s.log.Error().Err(err).Msg("failed to build csv export")
		dto.InternalServerError(ctx, dto.ErrInternal)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	ctx.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (s *service) Stats(ctx *ginext.Context) {
	rsvps, ok := s.adminRecords(ctx)
	if !ok {
		return
	}
	dto.SuccessResponse(ctx, export.Summarize(rsvps))
}

func (s *service) EventInfo(ctx *ginext.Context) {
	now := s.now()
	dto.SuccessResponse(ctx, dto.EventResponse{
		Event:     s.event,
		End:       s.event.End().Format(time.RFC3339),
		Date:      s.event.LongDate(),
		Time:      s.event.Clock(),
		Countdown: s.event.CountdownAt(now),
		Started:   !now.Before(s.event.Start),
	})
}

func (s *service) CalendarICS(ctx *ginext.Context) {
	ctx.Header("Content-Disposition", `attachment; filename="`+calendar.FileName+`"`)
	ctx.Data(http.StatusOK, calendar.ContentType, []byte(calendar.ICS(s.event, s.now())))
}

func (s *service) GoogleCalendar(ctx *ginext.Context) {
	ctx.Redirect(http.StatusFound, calendar.GoogleLink(s.event))
}

func (s *service) Share(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, s.event.Share(ctx.Query("url")))
}

// Invite renders the shareable image for a cached confirmation. A confirmation
// whose code cannot be drawn yields an empty 204.
func (s *service) Invite(ctx *ginext.Context) {
	var conf model.LocalConfirmation
	if err := decodeStrict(ctx, &conf); err != nil {
		dto.BadResponseError(ctx, dto.ErrInvalidInvite, nil)
		return
	}

	img, err := invite.Render(invite.Card{Name: conf.Name, Institution: conf.Institution, Event: s.event}, conf.QRData)
	if err != nil {
		if errors.Is(err, invite.ErrNoCode) {
			s.log.Debug().Err(err).Msg("invite skipped")
			ctx.Status(http.StatusNoContent)
			return
		}
		s.log.Error().Err(err).Msg("failed to render invite")
		dto.InternalServerError(ctx, dto.ErrInternal)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+invite.FileName(conf.Name)+`"`)
	ctx.Data(http.StatusOK, invite.ContentType, img)
}

func (s *service) QRCode(ctx *ginext.Context) {
	data := ctx.Query("data")
	if data == "" {
		dto.BadResponseError(ctx, dto.ErrMissingData, nil)
		return
	}

	size := defaultQRSize
	if raw := ctx.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxQRSize {
			dto.BadResponseError(ctx, dto.ErrInvalidData, map[string]string{"size": validator.ErrInvalidFormat})
			return
		}
		size = n
	}

	png, err := qr.PNG(data, size)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to render qr code")
		dto.InternalServerError(ctx, dto.ErrInternal)
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}
