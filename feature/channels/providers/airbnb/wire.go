package airbnb

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type reservationsResponse struct {
	Reservations []json.RawMessage `json:"reservations"`
}

type reservation struct {
	ConfirmationCode string `json:"confirmation_code"`
	Status           string `json:"status"`
	Guest            struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	} `json:"guest"`
	RoomType   string `json:"room_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalPrice any    `json:"total_price"`
	HostFee    any    `json:"host_fee"`
}

type calendarUpdate struct {
	ListingID      string           `json:"listing_id"`
	RoomType       string           `json:"room_type,omitempty"`
	Date           string           `json:"date"`
	AvailableCount *int             `json:"available_count,omitempty"`
	DailyPrice     *decimal.Decimal `json:"daily_price,omitempty"`
}

type statusUpdate struct {
	Status string `json:"status"`
}
