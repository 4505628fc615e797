// Package airbnb implements the Airbnb provider over its JSON API.
package airbnb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/channel"
	"channel-manager/core/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	Name            = "airbnb"
	DefaultEndpoint = "https://api.airbnb.com"
)

var statuses = channel.NewStatusTable(Name, map[booking.Status]string{
	booking.StatusConfirmed:  "accepted",
	booking.StatusCancelled:  "cancelled",
	booking.StatusCheckedIn:  "checked_in",
	booking.StatusCheckedOut: "checked_out",
	booking.StatusNoShow:     "no_show",
}, map[string]booking.Status{
	"cancelled_by_guest": booking.StatusCancelled,
	"cancelled_by_host":  booking.StatusCancelled,
	"denied":             booking.StatusCancelled,
})

// Provider talks to the Airbnb API with a bearer token.
type Provider struct {
	cfg    channel.Config
	tr     *channel.Transport
	base   string
	logger *zap.Logger
}

// New is the channel.Factory for Airbnb. The API key is the OAuth access
// token and the property id is the listing id.
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
	h := http.Header{}
	h.Set("Authorization", "Bearer "+p.cfg.APIKey)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

// FetchBookings lists the reservations of the listing in window.
func (p *Provider) FetchBookings(ctx context.Context, window booking.DateRange) ([]booking.CanonicalBooking, error) {
	resp, err := p.tr.Do(ctx, channel.Request{
		Method: http.MethodGet,
		URL:    p.base + "/v2/reservations",
		Query: url.Values{
			"listing_id": {p.cfg.PropertyID},
			"start_date": {window.FromString()},
			"end_date":   {window.ToString()},
		},
		Header: p.header(),
	})
	if err != nil {
		return nil, err
	}

	var doc reservationsResponse
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("%s: decode reservations: %w", Name, err)
	}

	out := make([]booking.CanonicalBooking, 0, len(doc.Reservations))
	for _, raw := range doc.Reservations {
		var r reservation
		if err := json.Unmarshal(raw, &r); err != nil {
			out = append(out, booking.CanonicalBooking{ChannelName: Name, RawPayload: booking.RawJSON(raw)})
			continue
		}
		out = append(out, toCanonical(r, raw))
	}
	return out, nil
}

func toCanonical(r reservation, raw json.RawMessage) booking.CanonicalBooking {
	b := booking.CanonicalBooking{
		ChannelName:       Name,
		ExternalBookingID: strings.TrimSpace(r.ConfirmationCode),
		GuestName:         strings.TrimSpace(r.Guest.FullName),
		GuestEmail:        strings.TrimSpace(r.Guest.Email),
		RoomType:          strings.TrimSpace(r.RoomType),
		Status:            statuses.ToCanonical(r.Status),
		RawPayload:        booking.RawJSON(raw),
	}
	b.CheckIn, _ = booking.ParseDate(r.StartDate)
	b.CheckOut, _ = booking.ParseDate(r.EndDate)
	if amount, ok := utils.ToDecimal(r.TotalPrice); ok {
		b.TotalAmount = amount
	}
	if fee, ok := utils.ToDecimal(r.HostFee); ok {
		b.Commission = decimal.NewNullDecimal(fee)
	}
	return b
}

// SyncAvailability sets the available count of one calendar night.
func (p *Provider) SyncAvailability(ctx context.Context, roomType string, date time.Time, available int) bool {
	return p.calendar(ctx, calendarUpdate{
		ListingID:      p.cfg.PropertyID,
		RoomType:       roomType,
		Date:           date.Format(booking.DateLayout),
		AvailableCount: &available,
	})
}

// SyncRates sets the nightly price of one calendar night.
func (p *Provider) SyncRates(ctx context.Context, roomType string, date time.Time, rate decimal.Decimal) bool {
	return p.calendar(ctx, calendarUpdate{
		ListingID:  p.cfg.PropertyID,
		RoomType:   roomType,
		Date:       date.Format(booking.DateLayout),
		DailyPrice: &rate,
	})
}

func (p *Provider) calendar(ctx context.Context, update calendarUpdate) bool {
	return p.push(ctx, http.MethodPut, p.base+"/v2/calendar_operations", update)
}

// UpdateBookingStatus pushes a status change for one reservation.
func (p *Provider) UpdateBookingStatus(ctx context.Context, externalBookingID string, status booking.Status) bool {
	native, ok := statuses.ToProvider(status)
	if !ok {
		p.logger.Warn("No Airbnb status for canonical status", zap.String("status", string(status)))
		return false
	}
	return p.push(ctx, http.MethodPut, p.base+"/v2/reservations/"+url.PathEscape(externalBookingID), statusUpdate{Status: native})
}

func (p *Provider) push(ctx context.Context, method, target string, body any) bool {
	payload, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("Failed to encode Airbnb request", zap.Error(err))
		return false
	}
	return p.tr.Push(ctx, channel.Request{
		Method: method,
		URL:    target,
		Header: p.header(),
		Body:   payload,
	}, p.logger)
}
