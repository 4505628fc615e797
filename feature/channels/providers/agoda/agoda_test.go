package agoda

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/channel"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bookingsXML = `<BookingListResponse>
  <Booking BookingID="AG-77" Status="CheckedIn">
    <Guest FirstName="Grace" LastName="Hopper" Email="grace@example.com"/>
    <RoomType>Suite</RoomType>
    <CheckIn>2026-12-01</CheckIn>
    <CheckOut>2026-12-05</CheckOut>
    <TotalAmount>980.00</TotalAmount>
    <Commission>147.00</Commission>
  </Booking>
  <Booking BookingID="AG-78" Status="Amended">
    <Guest FirstName="Linus" LastName="" Email=""/>
    <RoomType>Standard</RoomType>
    <CheckIn>2026-12-02T14:00:00Z</CheckIn>
    <CheckOut>2026-12-03T11:00:00Z</CheckOut>
    <TotalAmount>n/a</TotalAmount>
  </Booking>
</BookingListResponse>`

func newProvider(t *testing.T, handler http.HandlerFunc) channel.Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(channel.Config{APIKey: "agoda-key", PropertyID: "P-9", Endpoint: srv.URL}, srv.Client(), zap.NewNop())
}

func TestFetchBookings(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings", r.URL.Path)
		assert.Equal(t, "agoda-key", r.Header.Get(apiKeyHeader))
		b, _ := io.ReadAll(r.Body)
		assert.Equal(t, `<BookingListRequest PropertyID="P-9" From="2026-12-01" To="2026-12-31"></BookingListRequest>`, string(b))
		_, _ = io.WriteString(w, bookingsXML)
	})

	window, err := booking.ParseDateRange("2026-12-01", "2026-12-31")
	require.NoError(t, err)

	got, err := p.FetchBookings(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "AG-77", got[0].ExternalBookingID)
	assert.Equal(t, "Grace Hopper", got[0].GuestName)
	assert.Equal(t, booking.StatusCheckedIn, got[0].Status)
	assert.True(t, decimal.RequireFromString("980").Equal(got[0].TotalAmount))
	assert.True(t, decimal.RequireFromString("147").Equal(got[0].Commission.Decimal))

	assert.Equal(t, "Linus", got[1].GuestName)
	assert.Equal(t, booking.StatusConfirmed, got[1].Status)
	assert.Equal(t, time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC), got[1].CheckIn)
	assert.True(t, got[1].TotalAmount.IsZero())

	var raw map[string]string
	require.NoError(t, json.Unmarshal(got[0].RawPayload, &raw))
	assert.Equal(t, "xml", raw["format"])
	assert.True(t, strings.HasPrefix(raw["body"], `<Booking BookingID="AG-77" Status="CheckedIn">`), raw["body"])
	assert.True(t, strings.HasSuffix(raw["body"], "</Booking>"), raw["body"])
	assert.NotContains(t, raw["body"], "AG-78")
}

func TestFetchBookings_ServerError(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.FetchBookings(context.Background(), booking.NewDateRange(time.Now(), 3))
	assert.True(t, channel.IsTransportError(err))
	var te *channel.TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Status, "502")
}

func TestPushes(t *testing.T) {
	bodies := map[string]string{}
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies[r.URL.Path] = string(b)
	})
	ctx := context.Background()
	date := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)

	assert.True(t, p.SyncAvailability(ctx, "Suite", date, 2))
	assert.True(t, p.SyncRates(ctx, "Suite", date, decimal.RequireFromString("210")))
	assert.True(t, p.UpdateBookingStatus(ctx, "AG-77", booking.StatusCheckedOut))

	assert.Contains(t, bodies["/availability"], `<Room RoomType="Suite" Date="2026-12-24" Available="2"></Room>`)
	assert.Contains(t, bodies["/rates"], `Amount="210.00"`)
	assert.Contains(t, bodies["/bookings/status"], `Status="Departed"`)
}

func TestStatusRoundTrip(t *testing.T) {
	for _, s := range booking.Statuses() {
		native, ok := statuses.ToProvider(s)
		require.True(t, ok, s)
		assert.Equal(t, s, statuses.ToCanonical(native))
	}
	assert.Equal(t, booking.Status("pendingpayment"), statuses.ToCanonical("PendingPayment"))
}
