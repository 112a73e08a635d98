package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"egasrsvp/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNotConfigured = errors.New("guest record store is not configured")

// Repository is the guest record store: append, list newest first, and a
// bulk delete that removes every record as one unit.
type Repository interface {
	AddRSVP(ctx context.Context, r *model.RSVP) error
	ListRSVPs(ctx context.Context) ([]model.RSVP, error)
	DeleteAllRSVPs(ctx context.Context) (int, error)
	MigrateUp(ctx context.Context) error
	MigrateDown(ctx context.Context) error
	Close() error
}

// querier runs the read-only list query; *dbpg.DB sends it to a replica.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type repository struct {
	db     *sql.DB
	reads  querier
	slaves []*sql.DB
	log    *zerolog.Logger
}

// NewRepository wraps an open SQLite or single-node PostgreSQL handle.
func NewRepository(db *sql.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, reads: db, log: log}, nil
}

// NewPostgresRepository writes through the master of db and lists through
// its slaves in turn, falling back to the master when there are none.
func NewPostgresRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil || db.Master == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	r := newPostgres(db, log)
	if err := db.Master.Ping(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return r, nil
}

func newPostgres(db *dbpg.DB, log *zerolog.Logger) *repository {
	return &repository{db: db.Master, reads: db, slaves: db.Slaves, log: log}
}

// prepare fills the fields the store owns.
func prepare(r *model.RSVP) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()
}

func (r *repository) migrate(ctx context.Context, suffix string, reverse bool) error {
	files, err := fs.Glob(migrations, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}

	for _, file := range files {
		sqlBytes, err := migrations.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		if _, err := r.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", path.Base(file), err)
		}
	}
	return nil
}

func (r *repository) MigrateUp(ctx context.Context) error {
	if err := r.migrate(ctx, ".up.sql", false); err != nil {
		return err
	}
	r.log.Info().Msg("Migrations applied successfully")
	return nil
}

func (r *repository) MigrateDown(ctx context.Context) error {
	if err := r.migrate(ctx, ".down.sql", true); err != nil {
		return err
	}
	r.log.Info().Msg("Migrations rolled back successfully")
	return nil
}

func (r *repository) AddRSVP(ctx context.Context, rsvp *model.RSVP) error {
	prepare(rsvp)

	query := `
		INSERT INTO rsvps (id, name, email, institution, role, confirmation, phone, message, qr_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		rsvp.ID, rsvp.Name, rsvp.Email, rsvp.Institution, rsvp.Role,
		string(rsvp.Confirmation), rsvp.Phone, rsvp.Message, rsvp.QRData, rsvp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rsvp: %w", err)
	}
	return nil
}

func (r *repository) ListRSVPs(ctx context.Context) ([]model.RSVP, error) {
	query := `
		SELECT id, name, email, institution, role, confirmation, phone, message, qr_data, created_at
		FROM rsvps
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.reads.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rsvps: %w", err)
	}
	defer rows.Close()

	rsvps := make([]model.RSVP, 0)
	for rows.Next() {
		var (
			rsvp   model.RSVP
			status string
		)
		if err := rows.Scan(
			&rsvp.ID,
			&rsvp.Name,
			&rsvp.Email,
			&rsvp.Institution,
			&rsvp.Role,
			&status,
			&rsvp.Phone,
			&rsvp.Message,
			&rsvp.QRData,
			&rsvp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		rsvp.Confirmation = model.Status(status)
		rsvp.CreatedAt = rsvp.CreatedAt.UTC()
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rsvps: %w", err)
	}

	return rsvps, nil
}

func (r *repository) DeleteAllRSVPs(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps`).Scan(&count); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to count rsvps: %w", err)
	}

	if count == 0 {
		_ = tx.Rollback()
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rsvps`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to delete rsvps: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return count, nil
}

func (r *repository) Close() error {
	errs := []error{r.db.Close()}
	for _, slave := range r.slaves {
		errs = append(errs, slave.Close())
	}
	return errors.Join(errs...)
}

// unconfigured stands in for the store when its credentials are missing, so the
// rest of the site keeps working and every store call fails loudly.
type unconfigured struct {
	reason string
}

// Unconfigured returns a Repository whose every operation fails with
// ErrNotConfigured and reason.
func Unconfigured(reason string) Repository {
	return &unconfigured{reason: reason}
}

func (u *unconfigured) err() error {
	return fmt.Errorf("%w: %s", ErrNotConfigured, u.reason)
}

func (u *unconfigured) AddRSVP(context.Context, *model.RSVP) error { return u.err() }

func (u *unconfigured) ListRSVPs(context.Context) ([]model.RSVP, error) { return nil, u.err() }

func (u *unconfigured) DeleteAllRSVPs(context.Context) (int, error) { return 0, u.err() }

func (u *unconfigured) MigrateUp(context.Context) error { return u.err() }

func (u *unconfigured) MigrateDown(context.Context) error { return u.err() }

func (u *unconfigured) Close() error { return nil }
