package booking

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the canonical reservation state shared by all channels.
type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusCancelled  Status = "cancelled"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusNoShow     Status = "no-show"
)

// SyncStatusSynced marks a canonical row whose content matches the last fetch.
const SyncStatusSynced = "synced"

// Statuses returns the five canonical statuses.
func Statuses() []Status {
	return []Status{StatusConfirmed, StatusCancelled, StatusCheckedIn, StatusCheckedOut, StatusNoShow}
}

// IsCanonical reports whether s is one of the five canonical values.
func (s Status) IsCanonical() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCheckedIn, StatusCheckedOut, StatusNoShow:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes loosely formatted input ("Checked_In", "NO SHOW")
// into a canonical status. ok is false when the value is not canonical.
func ParseStatus(raw string) (Status, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	if s == "canceled" {
		s = string(StatusCancelled)
	}
	st := Status(s)
	return st, st.IsCanonical()
}

// CanonicalBooking is the normalized external reservation.
type CanonicalBooking struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	ChannelID         uint                `gorm:"index" json:"channel_id"`
	ChannelName       string              `gorm:"size:50;not null;uniqueIndex:idx_channel_booking,priority:1" json:"channel_name"`
	ExternalBookingID string              `gorm:"size:128;not null;uniqueIndex:idx_channel_booking,priority:2" json:"external_booking_id"`
	GuestName         string              `gorm:"size:255" json:"guest_name"`
	GuestEmail        string              `gorm:"size:255" json:"guest_email"`
	RoomType          string              `gorm:"size:100" json:"room_type"`
	CheckIn           time.Time           `json:"check_in"`
	CheckOut          time.Time           `json:"check_out"`
	TotalAmount       decimal.Decimal     `gorm:"type:decimal(12,2)" json:"total_amount"`
	Commission        decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"commission"`
	Status            Status              `gorm:"size:32;index" json:"status"`
	SyncStatus        string              `gorm:"size:20" json:"sync_status"`
	RawPayload        datatypes.JSON      `json:"raw_payload,omitempty"`
	LastSyncedAt      *time.Time          `json:"last_synced_at"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// TableName pins the table name independent of the naming strategy.
func (CanonicalBooking) TableName() string {
	return "canonical_bookings"
}

// Key returns the reconciliation key of the booking.
func (b CanonicalBooking) Key() string {
	return b.ChannelName + "|" + b.ExternalBookingID
}

// Overwrite copies the mutable fields of src onto b. Identity, creation
// timestamps and the channel id of an existing row are left untouched.
func (b *CanonicalBooking) Overwrite(src CanonicalBooking) {
	b.GuestName = src.GuestName
	b.GuestEmail = src.GuestEmail
	b.RoomType = src.RoomType
	b.CheckIn = src.CheckIn
	b.CheckOut = src.CheckOut
	b.TotalAmount = src.TotalAmount
	b.Commission = src.Commission
	b.Status = src.Status
	b.RawPayload = src.RawPayload
	if src.ChannelID != 0 {
		b.ChannelID = src.ChannelID
	}
}

// RawJSON marshals v into a JSON payload suitable for RawPayload.
// Marshal failures yield an empty payload rather than an error.
func RawJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// RawXML wraps an XML fragment so it can be stored in a JSON column.
func RawXML(fragment string) datatypes.JSON {
	return RawJSON(map[string]string{"format": "xml", "body": strings.TrimSpace(fragment)})
}
