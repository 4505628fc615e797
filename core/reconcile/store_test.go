package reconcile

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"channel-manager/core/booking"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGormStore_FindBooking_NotFound(t *testing.T) {
	db := setupDB(t)
	b, err := NewGormStore(db).FindBooking(context.Background(), "agoda", "missing")
	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestGormStore_FindBooking_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `canonical_bookings`")).
		WillReturnError(errors.New("connection reset"))

	b, err := NewGormStore(db).FindBooking(context.Background(), "agoda", "X")
	assert.ErrorContains(t, err, "connection reset")
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_Reconcile_StoreFailureIsolated(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `canonical_bookings`")).
		WillReturnError(errors.New("deadlock"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `sync_run_logs`")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	engine := NewEngine(NewGormStore(db), zap.NewNop())
	run, err := engine.Reconcile(context.Background(), 1, "agoda", []booking.CanonicalBooking{sampleBooking("G-1", "Gil")})
	require.NoError(t, err)

	assert.Equal(t, booking.RunStatusPartial, run.Status)
	assert.Equal(t, 1, run.RecordsFailed)
	assert.Contains(t, run.ErrorMessage, "reconcile agoda booking G-1: lookup: deadlock")
	assert.Equal(t, uint(11), run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_Reconcile_RunLogWriteFails(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `sync_run_logs`")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	engine := NewEngine(NewGormStore(db), zap.NewNop(), WithClock(func() time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	run, err := engine.Reconcile(context.Background(), 1, "agoda", nil)
	assert.ErrorContains(t, err, "disk full")
	require.NotNil(t, run)
	assert.Equal(t, booking.RunStatusSuccess, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
