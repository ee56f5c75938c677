package db

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pixperk/bulksql/internal/bulk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T, opts ...Option) (*Conn, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return New(sqlDB, DriverMySQL, opts...), mock
}

func TestConn_Exec(t *testing.T) {
	conn, mock := newMock(t)
	stmt := bulk.Insert("t", bulk.Batch{{{Column: "a", Value: 1}}})

	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(7, 1))

	res, err := conn.Exec(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, Result{RowsAffected: 1, LastInsertID: 7}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_ExecEmpty(t *testing.T) {
	conn, _ := newMock(t)

	_, err := conn.Exec(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = conn.Query(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestConn_ExecError(t *testing.T) {
	conn, mock := newMock(t)
	boom := errors.New("boom")

	mock.ExpectExec("DELETE FROM t").WillReturnError(boom)

	_, err := conn.Exec(context.Background(), "DELETE FROM t")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_ExecRetriesConnectionErrors(t *testing.T) {
	conn, mock := newMock(t, WithRetry(RetryConfig{MaxAttempts: 3}))
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	mock.ExpectExec("UPDATE t SET a = 1").WillReturnError(refused)
	mock.ExpectExec("UPDATE t SET a = 1").WillReturnResult(sqlmock.NewResult(0, 4))

	res, err := conn.Exec(context.Background(), "UPDATE t SET a = 1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.RowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_ExecDoesNotRepeatServerErrors(t *testing.T) {
	conn, mock := newMock(t, WithRetry(RetryConfig{MaxAttempts: 3}))
	timeout := errors.New("i/o timeout after write")

	mock.ExpectExec("INSERT INTO t (`a`) VALUES (1);").WillReturnError(timeout)

	_, err := conn.Exec(context.Background(), "INSERT INTO t (`a`) VALUES (1);")
	assert.ErrorIs(t, err, timeout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_Query(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT id, name FROM t").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("a")).
			AddRow(int64(2), nil),
	)

	set, err := conn.Query(context.Background(), "SELECT id, name FROM t")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, set.Columns)
	assert.Equal(t, bulk.Batch{
		{{Column: "id", Value: int64(1)}, {Column: "name", Value: "a"}},
		{{Column: "id", Value: int64(2)}, {Column: "name", Value: nil}},
	}, set.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_QueryError(t *testing.T) {
	conn, mock := newMock(t)
	boom := errors.New("no such table")

	mock.ExpectQuery("SELECT 1 FROM missing").WillReturnError(boom)

	_, err := conn.Query(context.Background(), "SELECT 1 FROM missing")
	assert.ErrorIs(t, err, boom)
}

func TestConn_EscapeNativeDefault(t *testing.T) {
	conn, _ := newMock(t)
	assert.Equal(t, `it\'s`, conn.EscapeNative("it's"))
	assert.Equal(t, DriverMySQL, conn.Driver())
}
