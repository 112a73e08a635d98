package mailer

import (
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"egasrsvp/internal/event"
	"egasrsvp/internal/model"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Team     string
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SendFunc has the signature of smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg   Config
	event event.Event
	log   *zerolog.Logger
	send  SendFunc
}

func New(cfg Config, ev event.Event, log *zerolog.Logger) *Mailer {
	return NewWithSender(cfg, ev, log, smtp.SendMail)
}

func NewWithSender(cfg Config, ev event.Event, log *zerolog.Logger, send SendFunc) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg, event: ev, log: log, send: send}
}

// SendConfirmationEmail tells the guest their answer was recorded and reminds
// them to bring the QR code.
func (m *Mailer) SendConfirmationEmail(name, recipientEmail string, status model.Status) error {
	if !m.cfg.Enabled() {
		return ErrNotConfigured
	}

	msg := Compose(m.cfg, m.event, name, recipientEmail, status, time.Now())
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{recipientEmail}, msg); err != nil {
		m.log.Warn().Err(err).Str("email", recipientEmail).Msg("Failed to send confirmation email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("email", recipientEmail).Str("status", string(status)).Msg("Confirmation email sent")
	return nil
}

func Subject(ev event.Event) string {
	return "Confirmação de Presença - Lançamento " + ev.Author
}

// Compose renders the full RFC 5322 message.
func Compose(cfg Config, ev event.Event, name, to string, status model.Status, now time.Time) []byte {
	from := cfg.From
	if cfg.FromName != "" {
		from = mime.QEncoding.Encode("utf-8", cfg.FromName) + " <" + cfg.From + ">"
	}
	team := cfg.Team
	if team == "" {
		team = "Equipa " + ev.Author
	}

	// the original template only distinguishes confirmed from everything else
	label := model.StatusMaybe.Label()
	if status == model.StatusYes {
		label = model.StatusYes.Label()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s!\r\n\r\n", name)
	fmt.Fprintf(&b, "Sua confirmação para o lançamento da obra \"%s\" de %s foi recebida com sucesso.\r\n\r\n", ev.BookTitle, ev.Author)
	fmt.Fprintf(&b, "Status: %s\r\n", label)
	fmt.Fprintf(&b, "Data: %s\r\n", ev.LongDate())
	fmt.Fprintf(&b, "Hora: %s\r\n", ev.Clock())
	fmt.Fprintf(&b, "Local: %s\r\n\r\n", ev.Location)
	b.WriteString("Apresente seu código QR no local do evento para ter acesso.\r\n\r\n")
	fmt.Fprintf(&b, "Atenciosamente,\r\n%s\r\n", team)

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", Subject(ev)),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: 8bit",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + b.String())
}
