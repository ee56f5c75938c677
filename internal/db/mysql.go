package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const DriverMySQL = "mysql"

// MySQLConfig describes a MySQL server. DSN, when set, wins over the
// discrete fields.
type MySQLConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Charset  string
}

// FormatDSN renders the go-sql-driver DSN for the configuration.
func (m MySQLConfig) FormatDSN() (string, error) {
	cfg, _, err := m.driverConfig()
	if err != nil {
		return "", err
	}
	return cfg.FormatDSN(), nil
}

// driverConfig goes through the DSN string so the driver itself interprets
// the charset parameter.
func (m MySQLConfig) driverConfig() (*mysql.Config, string, error) {
	dsn := m.DSN
	if dsn == "" {
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(ifEmpty(m.Host, "127.0.0.1"), ifEmpty(m.Port, "3306"))
		cfg.User = m.User
		cfg.Passwd = m.Password
		cfg.DBName = m.Database
		dsn = cfg.FormatDSN()
	}

	charset := ifEmpty(m.Charset, "utf8")
	if i := strings.Index(dsn, "charset="); i >= 0 {
		charset = strings.SplitN(dsn[i+len("charset="):], "&", 2)[0]
	} else if strings.Contains(dsn, "?") {
		dsn += "&charset=" + charset
	} else {
		dsn += "?charset=" + charset
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	return cfg, charset, nil
}

// OpenMySQL connects to MySQL and negotiates the configured charset. Any
// failure here, including an unsupported charset, is returned wrapped in
// ErrConnect.
func OpenMySQL(ctx context.Context, m MySQLConfig, opts ...Option) (*Conn, error) {
	cfg, charset, err := m.driverConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	sqlDB := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: mysql %s (charset %s): %w", ErrConnect, cfg.Addr, charset, err)
	}

	conn := New(sqlDB, DriverMySQL, opts...)
	conn.escape = mysqlEscaper(ctx, conn)
	return conn, nil
}

// mysqlEscaper picks the native escape routine from the session sql_mode.
func mysqlEscaper(ctx context.Context, c *Conn) func(string) string {
	mode, ok, err := FetchScalar(ctx, c, "SELECT @@SESSION.sql_mode")
	if err != nil {
		c.logger.Warn("Could not read sql_mode, assuming backslash escapes", zap.Error(err))
		return c.escape
	}
	if s, isString := mode.(string); ok && isString && hasNoBackslashEscapes(s) {
		return escapeQuotesOnly
	}
	return c.escape
}

func hasNoBackslashEscapes(sqlMode string) bool {
	for _, m := range strings.Split(sqlMode, ",") {
		if strings.EqualFold(strings.TrimSpace(m), "NO_BACKSLASH_ESCAPES") {
			return true
		}
	}
	return false
}

func escapeQuotesOnly(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func ifEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
