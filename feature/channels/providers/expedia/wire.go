package expedia

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type reservationsResponse struct {
	Reservations []json.RawMessage `json:"reservations"`
}

type reservation struct {
	ReservationID string `json:"reservationId"`
	Status        string `json:"status"`
	PrimaryGuest  struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"primaryGuest"`
	RoomTypeName string `json:"roomTypeName"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	TotalAmount  money  `json:"totalAmount"`
	Commission   *money `json:"commission"`
}

// money carries value as either a JSON number or a string.
type money struct {
	Value    any    `json:"value"`
	Currency string `json:"currency"`
}

type availabilityUpdate struct {
	RoomTypeName string `json:"roomTypeName"`
	Date         string `json:"date"`
	Available    int    `json:"available"`
}

type rateUpdate struct {
	RoomTypeName string          `json:"roomTypeName"`
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
}

type statusUpdate struct {
	Status string `json:"status"`
}
