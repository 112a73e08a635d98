package consumerWorker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"egasrsvp/internal/model"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	SendFunc func(name, email string, status model.Status) error
}

func (f *fakeSender) SendConfirmationEmail(name, email string, status model.Status) error {
	f.mu.Lock()
	f.sent = append(f.sent, email)
	f.mu.Unlock()
	if f.SendFunc != nil {
		return f.SendFunc(name, email, status)
	}
	return nil
}

type fakeConsumer struct {
	ConsumeFunc func(handler func([]byte) error) error
}

func (f *fakeConsumer) Consume(handler func([]byte) error) error {
	return f.ConsumeFunc(handler)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		sendErr  error
		wantErr  bool
		wantSent int
	}{
		{"valid", `{"id":"r1","nome":"Ana","email":"ana@exemplo.ao","confirmacao":"sim"}`, nil, false, 1},
		{"mail failure is acknowledged", `{"id":"r1","nome":"Ana","email":"ana@exemplo.ao","confirmacao":"sim"}`, errors.New("smtp down"), false, 1},
		{"bad json is rejected", `{"id":`, nil, true, 0},
		{"no recipient", `{"id":"r1","nome":"Ana"}`, nil, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{SendFunc: func(string, string, model.Status) error { return tt.sendErr }}
			r := NewReader(nil, sender)
			if err := r.Handle([]byte(tt.body)); (err != nil) != tt.wantErr {
				t.Errorf("Handle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(sender.sent) != tt.wantSent {
				t.Errorf("sent %d emails, want %d", len(sender.sent), tt.wantSent)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	sender := &fakeSender{}
	consumer := &fakeConsumer{ConsumeFunc: func(handler func([]byte) error) error {
		return handler([]byte(`{"id":"r1","nome":"Ana","email":"ana@exemplo.ao","confirmacao":"talvez"}`))
	}}

	r := NewReader(consumer, sender)
	r.Start(context.Background())
	r.Stop()

	if len(sender.sent) != 1 || sender.sent[0] != "ana@exemplo.ao" {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestStartConsumeError(t *testing.T) {
	consumer := &fakeConsumer{ConsumeFunc: func(func([]byte) error) error { return errors.New("no channel") }}
	r := NewReader(consumer, &fakeSender{})
	r.Start(context.Background())
	r.Stop()
}
