// Package expedia implements the Expedia Partner Central provider over JSON.
package expedia

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
	Name            = "expedia"
	DefaultEndpoint = "https://services.expediapartnercentral.com"
)

var statuses = channel.NewStatusTable(Name, map[booking.Status]string{
	booking.StatusConfirmed:  "BOOKED",
	booking.StatusCancelled:  "CANCELLED",
	booking.StatusCheckedIn:  "IN_HOUSE",
	booking.StatusCheckedOut: "CHECKED_OUT",
	booking.StatusNoShow:     "NO_SHOW",
}, map[string]booking.Status{
	"MODIFIED": booking.StatusConfirmed,
	"PENDING":  booking.StatusConfirmed,
})

// Provider talks to Expedia Partner Central with basic auth.
type Provider struct {
	cfg    channel.Config
	tr     *channel.Transport
	base   string
	logger *zap.Logger
}

// New is the channel.Factory for Expedia.
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

func (p *Provider) propertyURL(parts ...string) string {
	segments := append([]string{p.base, "properties", url.PathEscape(p.cfg.PropertyID)}, parts...)
	return strings.Join(segments, "/")
}

// FetchBookings lists the reservations with a stay in window.
func (p *Provider) FetchBookings(ctx context.Context, window booking.DateRange) ([]booking.CanonicalBooking, error) {
	resp, err := p.tr.Do(ctx, channel.Request{
		Method: http.MethodGet,
		URL:    p.propertyURL("reservations"),
		Query: url.Values{
			"startDate": {window.FromString()},
			"endDate":   {window.ToString()},
		},
		Header: channel.BasicHeader(p.cfg.APIKey, p.cfg.APISecret, "application/json"),
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
			// keep the record so reconciliation counts it as a failure
			out = append(out, booking.CanonicalBooking{ChannelName: Name, RawPayload: booking.RawJSON(raw)})
			continue
		}
		out = append(out, toCanonical(r, raw))
	}
	return out, nil
}

func toCanonical(r reservation, raw json.RawMessage) booking.CanonicalBooking {
	name := strings.TrimSpace(r.PrimaryGuest.FirstName + " " + r.PrimaryGuest.LastName)
	b := booking.CanonicalBooking{
		ChannelName:       Name,
		ExternalBookingID: strings.TrimSpace(r.ReservationID),
		GuestName:         name,
		GuestEmail:        strings.TrimSpace(r.PrimaryGuest.Email),
		RoomType:          strings.TrimSpace(r.RoomTypeName),
		Status:            statuses.ToCanonical(r.Status),
		RawPayload:        booking.RawJSON(raw),
	}
	b.CheckIn, _ = booking.ParseDate(r.CheckInDate)
	b.CheckOut, _ = booking.ParseDate(r.CheckOutDate)
	if amount, ok := utils.ToDecimal(r.TotalAmount.Value); ok {
		b.TotalAmount = amount
	}
	if r.Commission != nil {
		if commission, ok := utils.ToDecimal(r.Commission.Value); ok {
			b.Commission = decimal.NewNullDecimal(commission)
		}
	}
	return b
}

// SyncAvailability pushes the sellable room count for one night.
func (p *Provider) SyncAvailability(ctx context.Context, roomType string, date time.Time, available int) bool {
	return p.push(ctx, http.MethodPut, p.propertyURL("availability"), availabilityUpdate{
		RoomTypeName: roomType,
		Date:         date.Format(booking.DateLayout),
		Available:    available,
	})
}

// SyncRates pushes the nightly price for one night.
func (p *Provider) SyncRates(ctx context.Context, roomType string, date time.Time, rate decimal.Decimal) bool {
	return p.push(ctx, http.MethodPut, p.propertyURL("rates"), rateUpdate{
		RoomTypeName: roomType,
		Date:         date.Format(booking.DateLayout),
		Amount:       rate,
	})
}

// UpdateBookingStatus pushes a status change for one reservation.
func (p *Provider) UpdateBookingStatus(ctx context.Context, externalBookingID string, status booking.Status) bool {
	native, ok := statuses.ToProvider(status)
	if !ok {
		p.logger.Warn("No Expedia status for canonical status", zap.String("status", string(status)))
		return false
	}
	return p.push(ctx, http.MethodPatch, p.propertyURL("reservations", url.PathEscape(externalBookingID)), statusUpdate{Status: native})
}

func (p *Provider) push(ctx context.Context, method, target string, body any) bool {
	payload, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("Failed to encode Expedia request", zap.Error(err))
		return false
	}
	return p.tr.Push(ctx, channel.Request{
		Method: method,
		URL:    target,
		Header: channel.BasicHeader(p.cfg.APIKey, p.cfg.APISecret, "application/json"),
		Body:   payload,
	}, p.logger)
}
