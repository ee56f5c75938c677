package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const DriverClickHouse = "clickhouse"

var clickhouseReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// OpenClickHouse connects to ClickHouse over its native protocol.
// ClickHouse accepts backtick identifiers and backslash escapes, so the
// statements produced by the bulk builder run unchanged.
func OpenClickHouse(ctx context.Context, chURL string, opts ...Option) (*Conn, error) {
	var addr string
	var username, password, database string

	// Support both tcp://localhost:9000 and plain localhost:9000
	if strings.HasPrefix(chURL, "http://") || strings.HasPrefix(chURL, "tcp://") || strings.HasPrefix(chURL, "clickhouse://") {
		u, err := url.Parse(chURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid clickhouse url: %w", ErrConnect, err)
		}
		addr = u.Host
		if u.User != nil {
			username = u.User.Username()
			password, _ = u.User.Password()
		}
		if db := strings.Trim(u.Path, "/"); db != "" {
			database = db
		}
	} else {
		addr = chURL
	}

	sqlDB := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: ifEmpty(database, "default"),
			Username: ifEmpty(username, "default"),
			Password: password,
		},
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: clickhouse %s: %w", ErrConnect, addr, err)
	}

	opts = append([]Option{withEscaper(clickhouseReplacer.Replace)}, opts...)
	return New(sqlDB, DriverClickHouse, opts...), nil
}
