package rabbit

import (
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error { f.acks++; return nil }

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(uint64, bool) error { return nil }

func TestSettle(t *testing.T) {
	tests := []struct {
		name        string
		redelivered bool
		handlerErr  error
		wantAcks    int
		wantNacks   int
	}{
		{"handled", false, nil, 1, 0},
		{"handler error", false, errors.New("bad body"), 0, 1},
		{"handler error on redelivery", true, errors.New("bad body"), 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			d := amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Redelivered: tt.redelivered, Body: []byte("{}")}

			var got []byte
			settle(d, func(body []byte) error {
				got = body
				return tt.handlerErr
			})

			if string(got) != "{}" {
				t.Errorf("handler got %q", got)
			}
			if ack.acks != tt.wantAcks || ack.nacks != tt.wantNacks {
				t.Errorf("acks = %d, nacks = %d; want %d, %d", ack.acks, ack.nacks, tt.wantAcks, tt.wantNacks)
			}
			if ack.requeue {
				t.Error("failed delivery was requeued")
			}
		})
	}
}
