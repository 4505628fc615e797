package pms

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room statuses.
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

// Reservation is a local reservation. Source is "direct" for front desk
// bookings or the provider name of the channel it came from.
type Reservation struct {
	ID               string          `gorm:"primaryKey;size:64" json:"id"`
	Source           string          `gorm:"size:50;index" json:"source"`
	ChannelBookingID string          `gorm:"size:128" json:"channel_booking_id"`
	GuestID          string          `gorm:"size:64;index" json:"guest_id"`
	GuestName        string          `gorm:"size:255" json:"guest_name"`
	GuestEmail       string          `gorm:"size:255" json:"guest_email"`
	RoomID           string          `gorm:"size:64;index" json:"room_id"`
	RoomType         string          `gorm:"size:100" json:"room_type"`
	CheckIn          time.Time       `json:"check_in"`
	CheckOut         time.Time       `json:"check_out"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	Status           string          `gorm:"size:32" json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName pins the table name independent of the naming strategy.
func (Reservation) TableName() string {
	return "reservations"
}

// Room is a sellable unit.
type Room struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Number    string    `gorm:"size:20" json:"number"`
	RoomType  string    `gorm:"size:100;index" json:"room_type"`
	Status    string    `gorm:"size:20;not null;default:available" json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name independent of the naming strategy.
func (Room) TableName() string {
	return "rooms"
}

// Guest is a guest profile with its loyalty standing.
type Guest struct {
	ID            string          `gorm:"primaryKey;size:64" json:"id"`
	Name          string          `gorm:"size:255" json:"name"`
	Email         string          `gorm:"size:255" json:"email"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_spent"`
	LoyaltyPoints int64           `json:"loyalty_points"`
	Tier          string          `gorm:"size:20" json:"tier"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName pins the table name independent of the naming strategy.
func (Guest) TableName() string {
	return "guests"
}

// Models returns the tables owned by this package, for migrations.
func Models() []any {
	return []any{&Reservation{}, &Room{}, &Guest{}}
}
