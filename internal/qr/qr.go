// Package qr builds the string staff scan at the venue entrance and renders it
// as a QR code.
//
// The payload is a JSON object with the keys event, name, email, inst and conf.
// Encode always writes the keys in that order so the same confirmation yields
// the same bytes on the server and on the guest's device.
package qr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"

	"egasrsvp/internal/model"
)

// Level is the error correction used for every guest code.
const Level = qrcode.Highest

var ErrEmptyPayload = errors.New("qr: empty payload")

// Payload is the decoded content of a guest's code.
type Payload struct {
	Event       string       `json:"event"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Institution string       `json:"inst"`
	Status      model.Status `json:"conf"`
}

// FromGuest builds the payload for guest at the event titled eventTitle.
func FromGuest(eventTitle string, g model.Guest) Payload {
	return Payload{
		Event:       eventTitle,
		Name:        g.Name,
		Email:       g.Email,
		Institution: g.Institution,
		Status:      g.Confirmation,
	}
}

// Encode serializes p deterministically.
func Encode(p Payload) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Payload only holds strings, encoding cannot fail.
	_ = enc.Encode(p)
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Decode parses a payload produced by Encode. Key order does not matter; unknown
// keys are rejected.
func Decode(s string) (Payload, error) {
	var p Payload
	if s == "" {
		return p, ErrEmptyPayload
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("decode qr payload: %w", err)
	}
	if dec.More() {
		return Payload{}, fmt.Errorf("decode qr payload: trailing data")
	}
	return p, nil
}

// Image renders payload as a square code of size pixels.
func Image(payload string, size int) (image.Image, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	q, err := qrcode.New(payload, Level)
	if err != nil {
		return nil, fmt.Errorf("build qr code: %w", err)
	}
	return q.Image(size), nil
}

// PNG renders payload as a PNG-encoded code of size pixels.
func PNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	png, err := qrcode.Encode(payload, Level, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}
