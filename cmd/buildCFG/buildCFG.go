package buildCFG

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"egasrsvp/internal/event"
	"egasrsvp/internal/mailer"
	"egasrsvp/internal/repo"
)

// Getter is the part of *config.Config the builders read.
type Getter interface {
	GetString(key string) string
	GetInt(key string) int
	GetDuration(key string) time.Duration
}

type ServerConfig struct {
	Port      string
	StaticDir string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type ClientConfig struct {
	ServerURL string
	CachePath string
}

func stringOr(cfg Getter, key, def string) string {
	if v := strings.TrimSpace(cfg.GetString(key)); v != "" {
		return v
	}
	return def
}

func intOr(cfg Getter, key string, def int) int {
	if v := cfg.GetInt(key); v != 0 {
		return v
	}
	return def
}

func BuildServerConfig(cfg Getter, log *zerolog.Logger) ServerConfig {
	sc := ServerConfig{
		Port:      stringOr(cfg, "server.port", "8080"),
		StaticDir: cfg.GetString("server.static_dir"),
	}
	log.Debug().Str("port", sc.Port).Msg("server config built")
	return sc
}

// BuildDBConfig never fails on missing credentials; repo.Open turns those
// into an unconfigured store.
func BuildDBConfig(cfg Getter, log *zerolog.Logger) (repo.Config, error) {
	rc := repo.Config{
		Driver:          strings.ToLower(cfg.GetString("database.driver")),
		DSN:             cfg.GetString("database.dsn"),
		MaxOpenConns:    intOr(cfg, "database.max_open_conns", 10),
		MaxIdleConns:    intOr(cfg, "database.max_idle_conns", 5),
		ConnMaxLifetime: cfg.GetDuration("database.conn_max_lifetime"),
		MongoURI:        cfg.GetString("mongo.uri"),
		MongoDatabase:   cfg.GetString("mongo.database"),
		MongoCollection: stringOr(cfg, "mongo.collection", "rsvps"),
	}
	if rc.ConnMaxLifetime == 0 {
		rc.ConnMaxLifetime = 30 * time.Minute
	}
	for _, dsn := range strings.Split(cfg.GetString("database.slaves"), ",") {
		if dsn = strings.TrimSpace(dsn); dsn != "" {
			rc.SlaveDSNs = append(rc.SlaveDSNs, dsn)
		}
	}

	switch rc.Driver {
	case "", repo.DriverPostgres, repo.DriverSQLite, repo.DriverMongo:
	default:
		return repo.Config{}, fmt.Errorf("database.driver must be one of %s, %s, %s; got %q",
			repo.DriverPostgres, repo.DriverSQLite, repo.DriverMongo, rc.Driver)
	}
	if rc.MaxIdleConns > rc.MaxOpenConns {
		log.Warn().Int("max_idle", rc.MaxIdleConns).Int("max_open", rc.MaxOpenConns).Msg("max_idle_conns above max_open_conns, clamping")
		rc.MaxIdleConns = rc.MaxOpenConns
	}
	return rc, nil
}

// BuildRabbitConfig returns a zero config when rabbit.url is unset, which
// means emails are sent directly.
func BuildRabbitConfig(cfg Getter, log *zerolog.Logger) (RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		log.Info().Msg("rabbit.url not set, notifications bypass the queue")
		return RabbitConfig{}, nil
	}
	rc := RabbitConfig{
		Url:      url,
		Exchange: stringOr(cfg, "rabbit.exchange", "rsvp"),
		Queue:    stringOr(cfg, "rabbit.queue", "rsvp.notifications"),
	}
	if !strings.HasPrefix(rc.Url, "amqp://") && !strings.HasPrefix(rc.Url, "amqps://") {
		return RabbitConfig{}, errors.New("rabbit.url must start with amqp:// or amqps://")
	}
	return rc, nil
}

func BuildSMTPConfig(cfg Getter) mailer.Config {
	return mailer.Config{
		Host:     cfg.GetString("smtp.host"),
		Port:     intOr(cfg, "smtp.port", 587),
		Username: cfg.GetString("smtp.username"),
		Password: cfg.GetString("smtp.password"),
		From:     cfg.GetString("smtp.from"),
		FromName: stringOr(cfg, "smtp.from_name", "Convite Oficial"),
		Team:     cfg.GetString("smtp.team"),
	}
}

// BuildEventConfig overlays the event.* keys on the default ceremony.
func BuildEventConfig(cfg Getter) (event.Event, error) {
	def := event.DefaultConfig()
	ec := event.Config{
		Title:     stringOr(cfg, "event.title", def.Title),
		BookTitle: stringOr(cfg, "event.book_title", def.BookTitle),
		Author:    stringOr(cfg, "event.author", def.Author),
		Location:  stringOr(cfg, "event.location", def.Location),
		Date:      stringOr(cfg, "event.date", def.Date),
		Time:      stringOr(cfg, "event.time", def.Time),
		Timezone:  stringOr(cfg, "event.timezone", def.Timezone),
		Duration:  cfg.GetDuration("event.duration"),
		PageURL:   cfg.GetString("event.page_url"),
	}
	return event.New(ec)
}

func BuildAdminSecret(cfg Getter, log *zerolog.Logger) string {
	secret := cfg.GetString("admin.secret")
	if secret == "" {
		log.Warn().Msg("admin.secret not set, admin endpoints will reject every request")
	}
	return secret
}

func BuildClientConfig(cfg Getter) ClientConfig {
	return ClientConfig{
		ServerURL: stringOr(cfg, "client.server_url", "http://localhost:8080"),
		CachePath: stringOr(cfg, "client.cache_path", "rsvp-local.db"),
	}
}
