package pms

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a reservation, room or guest does not exist.
var ErrNotFound = errors.New("record not found")

// Store persists the local property records.
type Store interface {
	GetReservation(ctx context.Context, id string) (*Reservation, error)
	GetRoom(ctx context.Context, id string) (*Room, error)
	SetRoomStatus(ctx context.Context, id, status string) error
	CountAvailable(ctx context.Context, roomType string) (int64, error)
	GetGuest(ctx context.Context, id string) (*Guest, error)
	SaveLoyalty(ctx context.Context, g *Guest) error
}

// GormStore implements Store on a gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetReservation(ctx context.Context, id string) (*Reservation, error) {
	var r Reservation
	if err := first(s.db.WithContext(ctx), &r, id); err != nil {
		return nil, fmt.Errorf("reservation %s: %w", id, err)
	}
	return &r, nil
}

func (s *GormStore) GetRoom(ctx context.Context, id string) (*Room, error) {
	var r Room
	if err := first(s.db.WithContext(ctx), &r, id); err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	return &r, nil
}

func (s *GormStore) SetRoomStatus(ctx context.Context, id, status string) error {
	res := s.db.WithContext(ctx).Model(&Room{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) CountAvailable(ctx context.Context, roomType string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Room{}).
		Where("room_type = ? AND status = ?", roomType, RoomAvailable).
		Count(&n).Error
	return n, err
}

func (s *GormStore) GetGuest(ctx context.Context, id string) (*Guest, error) {
	var g Guest
	if err := first(s.db.WithContext(ctx), &g, id); err != nil {
		return nil, fmt.Errorf("guest %s: %w", id, err)
	}
	return &g, nil
}

func (s *GormStore) SaveLoyalty(ctx context.Context, g *Guest) error {
	return s.db.WithContext(ctx).Model(g).Updates(map[string]any{
		"total_spent":    g.TotalSpent,
		"loyalty_points": g.LoyaltyPoints,
		"tier":           g.Tier,
	}).Error
}

func first(db *gorm.DB, dest any, id string) error {
	err := db.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
