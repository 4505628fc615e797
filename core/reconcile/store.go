package reconcile

import (
	"context"
	"errors"

	"channel-manager/core/booking"

	"gorm.io/gorm"
)

// Store persists canonical bookings and run logs.
type Store interface {
	// FindBooking returns nil, nil when no booking exists for the key.
	FindBooking(ctx context.Context, channelName, externalID string) (*booking.CanonicalBooking, error)
	CreateBooking(ctx context.Context, b *booking.CanonicalBooking) error
	UpdateBooking(ctx context.Context, b *booking.CanonicalBooking) error
	CreateRunLog(ctx context.Context, run *booking.SyncRunLog) error
	// ListRuns returns the newest runs first. An empty channelName lists every channel.
	ListRuns(ctx context.Context, channelName string, limit int) ([]booking.SyncRunLog, error)
}

// GormStore implements Store on a gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindBooking(ctx context.Context, channelName, externalID string) (*booking.CanonicalBooking, error) {
	var b booking.CanonicalBooking
	err := s.db.WithContext(ctx).
		Where("channel_name = ? AND external_booking_id = ?", channelName, externalID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *GormStore) CreateBooking(ctx context.Context, b *booking.CanonicalBooking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) UpdateBooking(ctx context.Context, b *booking.CanonicalBooking) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *GormStore) CreateRunLog(ctx context.Context, run *booking.SyncRunLog) error {
	return s.db.WithContext(ctx).Create(run).Error
}

func (s *GormStore) ListRuns(ctx context.Context, channelName string, limit int) ([]booking.SyncRunLog, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Order("started_at DESC").Order("id DESC").Limit(limit)
	if channelName != "" {
		q = q.Where("channel_name = ?", channelName)
	}
	var runs []booking.SyncRunLog
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Models returns the tables owned by this package, for migrations.
func Models() []any {
	return []any{&booking.CanonicalBooking{}, &booking.SyncRunLog{}}
}

// RequiredColumns lists the columns the engine reads and writes, per table.
func RequiredColumns() map[string][]string {
	return map[string][]string{
		"canonical_bookings": {
			"id", "channel_id", "channel_name", "external_booking_id", "guest_name", "guest_email",
			"room_type", "check_in", "check_out", "total_amount", "commission", "status",
			"sync_status", "raw_payload", "last_synced_at",
		},
		"sync_run_logs": {
			"id", "channel_id", "channel_name", "sync_type", "status", "records_processed",
			"records_success", "records_failed", "error_message", "started_at", "completed_at",
			"duration_seconds",
		},
	}
}
