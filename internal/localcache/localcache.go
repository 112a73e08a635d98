package localcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"egasrsvp/internal/model"
)

// Key is the slot the guest's last confirmation lives under.
const Key = "bookLaunchRSVP"

var ErrCorrupt = errors.New("local confirmation is unreadable")

// Cache is a single-slot store on the guest's device. Save always replaces the
// previous confirmation.
type Cache struct {
	db *sql.DB
}

func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create local cache table: %w", err)
	}
	return &Cache{db: db}, nil
}

// Load returns nil and no error when nothing has been saved yet.
func (c *Cache) Load(ctx context.Context) (*model.LocalConfirmation, error) {
	var raw string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, Key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local confirmation: %w", err)
	}

	var conf model.LocalConfirmation
	if err := json.Unmarshal([]byte(raw), &conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &conf, nil
}

func (c *Cache) Save(ctx context.Context, conf model.LocalConfirmation) error {
	raw, err := json.Marshal(conf)
	if err != nil {
		return fmt.Errorf("marshal local confirmation: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		Key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("write local confirmation: %w", err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, Key); err != nil {
		return fmt.Errorf("clear local confirmation: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
