// Package agoda implements the Agoda provider over its XML supply API.
package agoda

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
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
	Name            = "agoda"
	DefaultEndpoint = "https://supply.agoda.com/api"
	apiKeyHeader    = "X-Api-Key"
)

var statuses = channel.NewStatusTable(Name, map[booking.Status]string{
	booking.StatusConfirmed:  "BookingConfirmed",
	booking.StatusCancelled:  "BookingCancelled",
	booking.StatusCheckedIn:  "CheckedIn",
	booking.StatusCheckedOut: "Departed",
	booking.StatusNoShow:     "NoShow",
}, map[string]booking.Status{
	"Amended":  booking.StatusConfirmed,
	"Refunded": booking.StatusCancelled,
})

// Provider talks to the Agoda supply API with an API key header.
type Provider struct {
	cfg    channel.Config
	tr     *channel.Transport
	base   string
	logger *zap.Logger
}

// New is the channel.Factory for Agoda.
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
	h.Set(apiKeyHeader, p.cfg.APIKey)
	h.Set("Content-Type", "application/xml")
	h.Set("Accept", "application/xml")
	return h
}

// FetchBookings posts a BookingListRequest for the window.
func (p *Provider) FetchBookings(ctx context.Context, window booking.DateRange) ([]booking.CanonicalBooking, error) {
	body, err := xml.Marshal(bookingListRequest{
		PropertyID: p.cfg.PropertyID,
		From:       window.FromString(),
		To:         window.ToString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", Name, err)
	}

	resp, err := p.tr.Do(ctx, channel.Request{
		Method: http.MethodPost,
		URL:    p.base + "/bookings",
		Header: p.header(),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	elems, err := channel.DecodeXMLElements[agodaBooking](resp.Body, "BookingListResponse", "Booking")
	if err != nil {
		return nil, fmt.Errorf("%s: decode bookings: %w", Name, err)
	}

	out := make([]booking.CanonicalBooking, 0, len(elems))
	for _, el := range elems {
		out = append(out, toCanonical(el.Value, el.Raw))
	}
	return out, nil
}

func toCanonical(src agodaBooking, raw string) booking.CanonicalBooking {
	name := strings.TrimSpace(strings.TrimSpace(src.Guest.FirstName) + " " + strings.TrimSpace(src.Guest.LastName))
	b := booking.CanonicalBooking{
		ChannelName:       Name,
		ExternalBookingID: strings.TrimSpace(src.BookingID),
		GuestName:         name,
		GuestEmail:        strings.TrimSpace(src.Guest.Email),
		RoomType:          strings.TrimSpace(src.RoomType),
		Status:            statuses.ToCanonical(src.Status),
		RawPayload:        booking.RawXML(raw),
	}
	b.CheckIn, _ = booking.ParseDate(strings.TrimSpace(src.CheckIn))
	b.CheckOut, _ = booking.ParseDate(strings.TrimSpace(src.CheckOut))
	if amount, ok := utils.ToDecimal(src.TotalAmount); ok {
		b.TotalAmount = amount
	}
	if commission, ok := utils.ToDecimal(src.Commission); ok {
		b.Commission = decimal.NewNullDecimal(commission)
	}
	return b
}

// SyncAvailability pushes the sellable room count for one night.
func (p *Provider) SyncAvailability(ctx context.Context, roomType string, date time.Time, available int) bool {
	return p.push(ctx, "/availability", availabilityRequest{
		PropertyID: p.cfg.PropertyID,
		Room: availabilityRoom{
			RoomType:  roomType,
			Date:      date.Format(booking.DateLayout),
			Available: strconv.Itoa(available),
		},
	})
}

// SyncRates pushes the nightly price for one night.
func (p *Provider) SyncRates(ctx context.Context, roomType string, date time.Time, rate decimal.Decimal) bool {
	return p.push(ctx, "/rates", rateRequest{
		PropertyID: p.cfg.PropertyID,
		Rate: rateEntry{
			RoomType: roomType,
			Date:     date.Format(booking.DateLayout),
			Amount:   rate.StringFixed(2),
		},
	})
}

// UpdateBookingStatus pushes a status change for one booking.
func (p *Provider) UpdateBookingStatus(ctx context.Context, externalBookingID string, status booking.Status) bool {
	native, ok := statuses.ToProvider(status)
	if !ok {
		p.logger.Warn("No Agoda status for canonical status", zap.String("status", string(status)))
		return false
	}
	return p.push(ctx, "/bookings/status", statusRequest{
		PropertyID: p.cfg.PropertyID,
		BookingID:  externalBookingID,
		Status:     native,
	})
}

func (p *Provider) push(ctx context.Context, path string, body any) bool {
	payload, err := xml.Marshal(body)
	if err != nil {
		p.logger.Error("Failed to encode Agoda request", zap.Error(err))
		return false
	}
	return p.tr.Push(ctx, channel.Request{
		Method: http.MethodPost,
		URL:    p.base + path,
		Header: p.header(),
		Body:   payload,
	}, p.logger)
}
