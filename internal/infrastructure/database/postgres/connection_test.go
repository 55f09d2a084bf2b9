package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/config"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/StayLedger/pkg/errors"
)

func testDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "ledger",
		Password: "pw",
		DBName:   "stayledger",
		SSLMode:  "disable",
	}
}

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	original := sqlOpen
	t.Cleanup(func() { sqlOpen = original })
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		assert.Equal(t, DriverName, driverName)
		assert.Equal(t, "postgres://ledger:pw@localhost:5432/stayledger?sslmode=disable", dsn)
		return db, err
	}
}

func TestNewConnection_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	stubOpen(t, db, nil)

	mock.ExpectPing()

	conn, err := NewConnection(testDBConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, db, conn.DB())
	assert.Equal(t, "postgres", conn.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConnection_PingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	stubOpen(t, db, nil)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	conn, err := NewConnection(testDBConfig(), logging.NewNopLogger())
	assert.Nil(t, conn)

	var appErr *pkgerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.ErrCodeDatabaseError, appErr.Code)
	assert.Equal(t, "database connection failed", appErr.Message)
	assert.Contains(t, appErr.Cause.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConnection_OpenFailure(t *testing.T) {
	stubOpen(t, nil, errors.New("open failed"))

	conn, err := NewConnection(testDBConfig(), logging.NewNopLogger())
	assert.Nil(t, conn)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func TestConnection_Check(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	conn := NewConnectionWithDB(db, logging.NewNopLogger())

	mock.ExpectPing()
	assert.NoError(t, conn.Check(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("timeout"))
	assert.Error(t, conn.Check(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_Close_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn := NewConnectionWithDB(db, logging.NewNopLogger())

	mock.ExpectClose()
	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// Transactions
// ─────────────────────────────────────────────────────────────────────────────

func TestWithinTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	conn := NewConnectionWithDB(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE commission_balances").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payout_requests").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = conn.WithinTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		if _, err := conn.Executor(ctx).ExecContext(ctx, "UPDATE commission_balances SET total_paid = 1"); err != nil {
			return err
		}
		// a nested call joins the outer transaction
		return conn.WithinTx(ctx, func(ctx context.Context) error {
			_, err := conn.Executor(ctx).ExecContext(ctx, "UPDATE payout_requests SET status = 'paid'")
			return err
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	conn := NewConnectionWithDB(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_revenue").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err = conn.WithinTx(context.Background(), func(ctx context.Context) error {
		if _, err := conn.Executor(ctx).ExecContext(ctx, "INSERT INTO booking_revenue VALUES (1)"); err != nil {
			return err
		}
		_, err := conn.Executor(ctx).ExecContext(ctx, "INSERT INTO bookings VALUES (1)")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	conn := NewConnectionWithDB(db, nil)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err = conn.WithinTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	conn := NewConnectionWithDB(db, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = conn.WithinTx(context.Background(), func(context.Context) error { panic("boom") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_DefaultsToPool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	conn := NewConnectionWithDB(db, nil)

	assert.Equal(t, db, conn.Executor(context.Background()))
	assert.False(t, InTx(context.Background()))
}

// ─────────────────────────────────────────────────────────────────────────────
// Migrator
// ─────────────────────────────────────────────────────────────────────────────

func TestNewMigrator_SourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations", NewMigrator("postgres://x", "migrations").source)
	assert.Equal(t, "file:///srv/migrations", NewMigrator("postgres://x", "file:///srv/migrations").source)
}

func TestMigrator_DownRejectsNonPositiveSteps(t *testing.T) {
	err := NewMigrator("postgres://x", "migrations").Down(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be greater than 0")
}

//Personal.AI order the ending
