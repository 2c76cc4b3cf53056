package db

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// WithDBName returns dsn pointed at another database on the same cluster.
// A DSN without a scheme is treated as postgres://.
func WithDBName(dsn, database string) (string, error) {
	if dsn == "" {
		return "", errors.New("empty DSN")
	}
	database = strings.TrimPrefix(strings.TrimSpace(database), "/")
	if database == "" {
		return "", errors.New("empty database name")
	}
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported DSN scheme %q", u.Scheme)
	}
	u.Path = "/" + database
	return u.String(), nil
}
