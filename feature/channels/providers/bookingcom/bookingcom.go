// Package bookingcom implements the Booking.com provider over its XML interface.
package bookingcom

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/channel"
	"channel-manager/core/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	Name            = "booking.com"
	DefaultEndpoint = "https://supply-xml.booking.com/hotels/xml"
	contentType     = "application/xml"
)

var statuses = channel.NewStatusTable(Name, map[booking.Status]string{
	booking.StatusConfirmed:  "CONFIRMED",
	booking.StatusCancelled:  "CANCELLED",
	booking.StatusCheckedIn:  "CHECKED_IN",
	booking.StatusCheckedOut: "CHECKED_OUT",
	booking.StatusNoShow:     "NO_SHOW",
}, map[string]booking.Status{
	"NEW":      booking.StatusConfirmed,
	"MODIFIED": booking.StatusConfirmed,
})

// Provider talks to the Booking.com supply XML API with basic auth.
type Provider struct {
	cfg    channel.Config
	tr     *channel.Transport
	base   string
	logger *zap.Logger
}

// New is the channel.Factory for Booking.com.
func New(cfg channel.Config, doer channel.Doer, logger *zap.Logger) channel.Provider {
	return &Provider{
		cfg:    cfg,
		tr:     channel.NewTransport(Name, doer),
		base:   cfg.BaseURL(DefaultEndpoint),
		logger: logger,
	}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Statuses() *channel.StatusTable { return statuses }

func (p *Provider) header() http.Header {
	return channel.BasicHeader(p.cfg.APIKey, p.cfg.APISecret, contentType)
}

// FetchBookings lists the reservations with a stay in window.
func (p *Provider) FetchBookings(ctx context.Context, window booking.DateRange) ([]booking.CanonicalBooking, error) {
	resp, err := p.tr.Do(ctx, channel.Request{
		Method: http.MethodGet,
		URL:    p.base + "/reservations",
		Query: url.Values{
			"hotel_id":  {p.cfg.HotelOrProperty()},
			"date_from": {window.FromString()},
			"date_to":   {window.ToString()},
		},
		Header: p.header(),
	})
	if err != nil {
		return nil, err
	}

	elems, err := channel.DecodeXMLElements[reservation](resp.Body, "reservations", "reservation")
	if err != nil {
		return nil, fmt.Errorf("%s: decode reservations: %w", Name, err)
	}

	out := make([]booking.CanonicalBooking, 0, len(elems))
	for _, el := range elems {
		out = append(out, p.toCanonical(el.Value, el.Raw))
	}
	return out, nil
}

func (p *Provider) toCanonical(r reservation, raw string) booking.CanonicalBooking {
	b := booking.CanonicalBooking{
		ChannelName:       Name,
		ExternalBookingID: strings.TrimSpace(r.ID),
		GuestName:         strings.TrimSpace(r.Guest.Name),
		GuestEmail:        strings.TrimSpace(r.Guest.Email),
		RoomType:          strings.TrimSpace(r.Room.Type),
		Status:            statuses.ToCanonical(r.Status),
		RawPayload:        booking.RawXML(raw),
	}
	b.CheckIn, _ = booking.ParseDate(strings.TrimSpace(r.CheckIn))
	b.CheckOut, _ = booking.ParseDate(strings.TrimSpace(r.CheckOut))
	if amount, ok := utils.ToDecimal(r.TotalPrice); ok {
		b.TotalAmount = amount
	}
	if commission, ok := utils.ToDecimal(r.Commission); ok {
		b.Commission = decimal.NewNullDecimal(commission)
	}
	return b
}

// SyncAvailability pushes the sellable room count for one night.
func (p *Provider) SyncAvailability(ctx context.Context, roomType string, date time.Time, available int) bool {
	return p.push(ctx, "/availability", inventoryRequest{
		HotelID: p.cfg.HotelOrProperty(),
		Room: inventoryRoom{
			Type:      roomType,
			Date:      date.Format(booking.DateLayout),
			Available: strconv.Itoa(available),
		},
	})
}

// SyncRates pushes the nightly price for one night.
func (p *Provider) SyncRates(ctx context.Context, roomType string, date time.Time, rate decimal.Decimal) bool {
	return p.push(ctx, "/rates", inventoryRequest{
		HotelID: p.cfg.HotelOrProperty(),
		Room: inventoryRoom{
			Type:  roomType,
			Date:  date.Format(booking.DateLayout),
			Price: rate.StringFixed(2),
		},
	})
}

// UpdateBookingStatus pushes a status change for one reservation.
func (p *Provider) UpdateBookingStatus(ctx context.Context, externalBookingID string, status booking.Status) bool {
	native, ok := statuses.ToProvider(status)
	if !ok {
		p.logger.Warn("No Booking.com status for canonical status", zap.String("status", string(status)))
		return false
	}
	return p.push(ctx, "/reservations/status", statusRequest{
		HotelID:       p.cfg.HotelOrProperty(),
		ReservationID: externalBookingID,
		Status:        native,
	})
}

func (p *Provider) push(ctx context.Context, path string, body any) bool {
	payload, err := xml.Marshal(body)
	if err != nil {
		p.logger.Error("Failed to encode Booking.com request", zap.Error(err))
		return false
	}
	return p.tr.Push(ctx, channel.Request{
		Method: http.MethodPost,
		URL:    p.base + path,
		Header: p.header(),
		Body:   append([]byte(xml.Header), payload...),
	}, p.logger)
}
