package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/student-profile-api/pkg/config"
)

const applicationName = "student-profile-api"

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// DSN renders the lib/pq connection string for cfg. DATABASE_URL wins over the
// discrete fields. Both forms tag the session with application_name and carry
// statement_timeout so a stuck query surfaces as STORE_UNAVAILABLE.
func DSN(cfg config.DatabaseConfig) (string, error) {
	timeout := ""
	if cfg.StatementTimeout > 0 {
		timeout = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	if cfg.URL != "" {
		u, err := url.Parse(cfg.URL)
		if err != nil {
			return "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		q := u.Query()
		if q.Get("application_name") == "" {
			q.Set("application_name", applicationName)
		}
		if timeout != "" && q.Get("statement_timeout") == "" {
			q.Set("statement_timeout", timeout)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	pairs := []string{
		"host=" + quoteValue(cfg.Host),
		"port=" + strconv.Itoa(cfg.Port),
		"user=" + quoteValue(cfg.User),
		"password=" + quoteValue(cfg.Password),
		"dbname=" + quoteValue(cfg.Name),
		"sslmode=" + quoteValue(cfg.SSLMode),
		"application_name=" + applicationName,
	}
	if timeout != "" {
		pairs = append(pairs, "statement_timeout="+timeout)
	}
	return strings.Join(pairs, " "), nil
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}

// NewPostgres opens and pings the PostgreSQL pool.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
