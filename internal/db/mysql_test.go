package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLConfig_FormatDSN(t *testing.T) {
	dsn, err := MySQLConfig{
		Host:     "db.local",
		User:     "app",
		Password: "secret",
		Database: "shop",
	}.FormatDSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "app:secret@tcp(db.local:3306)/shop")
	assert.Contains(t, dsn, "charset=utf8")
}

func TestMySQLConfig_DSNWins(t *testing.T) {
	dsn, err := MySQLConfig{
		DSN:     "root@tcp(10.0.0.1:3307)/other?charset=latin1",
		Host:    "ignored",
		Charset: "utf8mb4",
	}.FormatDSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "tcp(10.0.0.1:3307)/other")
	assert.Contains(t, dsn, "charset=latin1")
	assert.NotContains(t, dsn, "ignored")
}

func TestMySQLConfig_BadDSN(t *testing.T) {
	_, err := MySQLConfig{DSN: "not a dsn"}.FormatDSN()
	assert.Error(t, err)
}

func TestHasNoBackslashEscapes(t *testing.T) {
	assert.True(t, hasNoBackslashEscapes("STRICT_TRANS_TABLES,NO_BACKSLASH_ESCAPES"))
	assert.True(t, hasNoBackslashEscapes("no_backslash_escapes"))
	assert.False(t, hasNoBackslashEscapes("STRICT_TRANS_TABLES,ONLY_FULL_GROUP_BY"))
	assert.False(t, hasNoBackslashEscapes(""))
}

func TestMySQLEscaper(t *testing.T) {
	tests := []struct {
		name    string
		sqlMode string
		want    string
	}{
		{"backslash mode", "STRICT_TRANS_TABLES", `it\'s`},
		{"no backslash mode", "STRICT_TRANS_TABLES,NO_BACKSLASH_ESCAPES", `it''s`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMock(t)
			mock.ExpectQuery("SELECT @@SESSION.sql_mode").WillReturnRows(
				sqlmock.NewRows([]string{"@@SESSION.sql_mode"}).AddRow([]byte(tt.sqlMode)))

			escape := mysqlEscaper(context.Background(), conn)
			assert.Equal(t, tt.want, escape("it's"))
		})
	}
}

func TestMySQLEscaper_QueryFails(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("SELECT @@SESSION.sql_mode").WillReturnError(errors.New("denied"))

	escape := mysqlEscaper(context.Background(), conn)
	assert.Equal(t, `a\"b`, escape(`a"b`))
}
