package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config selects and locates the guest record store.
type Config struct {
	Driver string

	// DSN is the PostgreSQL master DSN or the SQLite file path.
	DSN             string
	SlaveDSNs       []string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open connects to the configured store. Missing credentials are not an error:
// the returned Repository fails each call with ErrNotConfigured instead.
func Open(ctx context.Context, cfg Config, log *zerolog.Logger) (Repository, error) {
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DSN == "" {
			return notConfigured(log, "set database.dsn for the postgres store"), nil
		}
		db, err := dbpg.New(cfg.DSN, cfg.SlaveDSNs, &dbpg.Options{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		return NewPostgresRepository(db, log)

	case DriverSQLite:
		if cfg.DSN == "" {
			return notConfigured(log, "set database.dsn to the sqlite file path"), nil
		}
		db, err := sql.Open("sqlite3", cfg.DSN+"?_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// one writer keeps the bulk delete transaction from hitting SQLITE_BUSY
		db.SetMaxOpenConns(1)
		return NewRepository(db, log)

	case DriverMongo:
		if cfg.MongoURI == "" || cfg.MongoDatabase == "" {
			return notConfigured(log, "set mongo.uri and mongo.database for the mongo store"), nil
		}
		collection := cfg.MongoCollection
		if collection == "" {
			collection = "rsvps"
		}
		return NewMongoRepository(ctx, cfg.MongoURI, cfg.MongoDatabase, collection, log)

	case "":
		return notConfigured(log, "set database.driver"), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func notConfigured(log *zerolog.Logger, reason string) Repository {
	log.Warn().Str("reason", reason).Msg("Guest record store credentials missing, store calls will fail")
	return Unconfigured(reason)
}
