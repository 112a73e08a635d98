package model

import (
	"strings"
	"time"
)

// Status is the attendance answer a guest picks on the form.
type Status string

const (
	StatusYes   Status = "sim"
	StatusNo    Status = "nao"
	StatusMaybe Status = "talvez"
)

// Statuses lists the accepted answers in dashboard order.
var Statuses = []Status{StatusYes, StatusMaybe, StatusNo}

func (s Status) Valid() bool {
	switch s {
	case StatusYes, StatusNo, StatusMaybe:
		return true
	}
	return false
}

// Label is the wording used in emails and on the admin dashboard.
func (s Status) Label() string {
	switch s {
	case StatusYes:
		return "Confirmado"
	case StatusNo:
		return "Ausente"
	default:
		return "Talvez"
	}
}

// Guest holds the fields a visitor fills in on the RSVP form.
type Guest struct {
	Name         string `json:"nome" db:"name" bson:"nome" validate:"required"`
	Email        string `json:"email" db:"email" bson:"email" validate:"required,rsvpemail"`
	Institution  string `json:"instituicao" db:"institution" bson:"instituicao"`
	Role         string `json:"cargo" db:"role" bson:"cargo"`
	Confirmation Status `json:"confirmacao" db:"confirmation" bson:"confirmacao" validate:"required,rsvpstatus"`
	Phone        string `json:"telefone" db:"phone" bson:"telefone"`
	Message      string `json:"mensagem" db:"message" bson:"mensagem"`
}

// Normalized returns g with surrounding whitespace trimmed from every field.
func (g Guest) Normalized() Guest {
	g.Name = strings.TrimSpace(g.Name)
	g.Email = strings.TrimSpace(g.Email)
	g.Institution = strings.TrimSpace(g.Institution)
	g.Role = strings.TrimSpace(g.Role)
	g.Confirmation = Status(strings.TrimSpace(string(g.Confirmation)))
	g.Phone = strings.TrimSpace(g.Phone)
	g.Message = strings.TrimSpace(g.Message)
	return g
}

// RSVP is a stored guest record. Records are never updated; they only leave the
// store through a bulk reset.
type RSVP struct {
	ID        string `json:"id" db:"id" bson:"_id"`
	Guest     `bson:",inline"`
	QRData    string    `json:"qrData" db:"qr_data" bson:"qrData"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
}

// LocalConfirmation is the snapshot of the last successful submission kept on the
// guest's own device.
type LocalConfirmation struct {
	Guest
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	QRData    string    `json:"qrData"`
}
