package localcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"egasrsvp/internal/model"
)

func openCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func confirmation(name string) model.LocalConfirmation {
	return model.LocalConfirmation{
		Guest:     model.Guest{Name: name, Email: "ana@exemplo.ao", Institution: "ENAPP", Confirmation: model.StatusYes},
		ID:        "RSVP-1767225600000",
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		QRData:    `{"event":"E","name":"` + name + `"}`,
	}
}

func TestLoadEmpty(t *testing.T) {
	c := openCache(t)
	got, err := c.Load(context.Background())
	if err != nil || got != nil {
		t.Errorf("Load() = %+v, %v; want nil, nil", got, err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()

	if err := c.Save(ctx, confirmation("Ana")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second := confirmation("Ana Silva")
	second.Institution = ""
	if err := c.Save(ctx, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || got.Name != "Ana Silva" || got.Institution != "" || got.QRData != second.QRData {
		t.Errorf("Load() = %+v, want the second confirmation", got)
	}
	if !got.Timestamp.Equal(second.Timestamp) {
		t.Errorf("Timestamp = %v", got.Timestamp)
	}

	var rows int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&rows); err != nil || rows != 1 {
		t.Errorf("kv holds %d rows (err %v), want 1", rows, err)
	}
}

func TestClear(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()

	if err := c.Save(ctx, confirmation("Ana")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, err := c.Load(ctx); err != nil || got != nil {
		t.Errorf("Load() after Clear = %+v, %v", got, err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	c := openCache(t)
	if _, err := c.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)`, Key, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := c.Load(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load() error = %v, want ErrCorrupt", err)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := c.Save(context.Background(), confirmation("Ana")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c.Close()
	if got, err := c.Load(context.Background()); err != nil || got == nil || got.Name != "Ana" {
		t.Errorf("Load() after reopen = %+v, %v", got, err)
	}
}
