package queue

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store persists queue items.
type Store interface {
	Create(ctx context.Context, item *Item) error
	// Pending returns up to limit pending items in id order.
	Pending(ctx context.Context, limit int) ([]Item, error)
	// Save writes the delivery fields of item.
	Save(ctx context.Context, item *Item) error
	Get(ctx context.Context, id uint) (*Item, error)
	Count(ctx context.Context, status Status) (int64, error)
	// List returns the newest items first; an empty status lists every status.
	List(ctx context.Context, status Status, limit int) ([]Item, error)
}

// GormStore implements Store on a gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, item *Item) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *GormStore) Pending(ctx context.Context, limit int) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (s *GormStore) Save(ctx context.Context, item *Item) error {
	return s.db.WithContext(ctx).Model(item).
		Select("status", "retry_count", "last_error", "processed_at").
		Updates(item).Error
}

func (s *GormStore) Get(ctx context.Context, id uint) (*Item, error) {
	var item Item
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormStore) Count(ctx context.Context, status Status) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Item{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (s *GormStore) List(ctx context.Context, status Status, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var items []Item
	err := q.Find(&items).Error
	return items, err
}
