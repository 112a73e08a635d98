package buildCFG

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"egasrsvp/internal/repo"
)

type fakeConfig map[string]any

func (f fakeConfig) GetString(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f fakeConfig) GetInt(key string) int {
	n, _ := f[key].(int)
	return n
}

func (f fakeConfig) GetDuration(key string) time.Duration {
	d, _ := f[key].(time.Duration)
	return d
}

func TestBuildServerConfig(t *testing.T) {
	log := zerolog.Nop()
	if got := BuildServerConfig(fakeConfig{}, &log); got.Port != "8080" {
		t.Errorf("default port = %q", got.Port)
	}
	if got := BuildServerConfig(fakeConfig{"server.port": "9000"}, &log); got.Port != "9000" {
		t.Errorf("port = %q", got.Port)
	}
}

func TestBuildDBConfig(t *testing.T) {
	log := zerolog.Nop()

	got, err := BuildDBConfig(fakeConfig{
		"database.driver":         "Postgres",
		"database.dsn":            "postgres://u:p@db/rsvp",
		"database.slaves":         "postgres://r1/rsvp, ,postgres://r2/rsvp",
		"database.max_open_conns": 4,
		"database.max_idle_conns": 8,
	}, &log)
	if err != nil {
		t.Fatalf("BuildDBConfig() error = %v", err)
	}
	if got.Driver != repo.DriverPostgres {
		t.Errorf("Driver = %q", got.Driver)
	}
	if len(got.SlaveDSNs) != 2 {
		t.Errorf("SlaveDSNs = %v", got.SlaveDSNs)
	}
	if got.MaxIdleConns != 4 {
		t.Errorf("MaxIdleConns = %d, want clamped to 4", got.MaxIdleConns)
	}
	if got.ConnMaxLifetime != 30*time.Minute || got.MongoCollection != "rsvps" {
		t.Errorf("defaults not applied: %+v", got)
	}

	if _, err := BuildDBConfig(fakeConfig{"database.driver": "firestore"}, &log); err == nil {
		t.Error("expected error for unknown driver")
	}
	if got, err := BuildDBConfig(fakeConfig{}, &log); err != nil || got.Driver != "" {
		t.Errorf("empty config = %+v, %v", got, err)
	}
}

func TestBuildRabbitConfig(t *testing.T) {
	log := zerolog.Nop()

	tests := []struct {
		name    string
		cfg     fakeConfig
		want    RabbitConfig
		wantErr bool
	}{
		{"unset", fakeConfig{}, RabbitConfig{}, false},
		{"defaults", fakeConfig{"rabbit.url": "amqp://guest:guest@mq:5672/"}, RabbitConfig{Url: "amqp://guest:guest@mq:5672/", Exchange: "rsvp", Queue: "rsvp.notifications"}, false},
		{"bad scheme", fakeConfig{"rabbit.url": "http://mq"}, RabbitConfig{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildRabbitConfig(tt.cfg, &log)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildEventConfig(t *testing.T) {
	ev, err := BuildEventConfig(fakeConfig{})
	if err != nil {
		t.Fatalf("BuildEventConfig() error = %v", err)
	}
	if want := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC); !ev.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", ev.Start, want)
	}
	if ev.End().Sub(ev.Start) != 2*time.Hour {
		t.Errorf("duration = %v", ev.End().Sub(ev.Start))
	}

	ev, err = BuildEventConfig(fakeConfig{"event.time": "18:30", "event.timezone": "UTC", "event.title": "Outro"})
	if err != nil {
		t.Fatalf("BuildEventConfig() error = %v", err)
	}
	if ev.Title != "Outro" || ev.Start.Hour() != 18 || ev.Start.Minute() != 30 {
		t.Errorf("overrides not applied: %+v", ev)
	}

	if _, err := BuildEventConfig(fakeConfig{"event.date": "05/03/2026"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestBuildSMTPAndClient(t *testing.T) {
	smtp := BuildSMTPConfig(fakeConfig{"smtp.host": "smtp.exemplo.ao", "smtp.from": "c@exemplo.ao"})
	if !smtp.Enabled() || smtp.Port != 587 || smtp.FromName != "Convite Oficial" {
		t.Errorf("smtp = %+v", smtp)
	}
	if BuildSMTPConfig(fakeConfig{}).Enabled() {
		t.Error("empty smtp config reported as enabled")
	}

	client := BuildClientConfig(fakeConfig{})
	if client.ServerURL != "http://localhost:8080" || client.CachePath != "rsvp-local.db" {
		t.Errorf("client = %+v", client)
	}
}
