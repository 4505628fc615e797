package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"channel-manager/core/booking"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testTable() *StatusTable {
	return NewStatusTable("test", map[booking.Status]string{
		booking.StatusConfirmed:  "OK",
		booking.StatusCancelled:  "XX",
		booking.StatusCheckedIn:  "IN",
		booking.StatusCheckedOut: "OUT",
		booking.StatusNoShow:     "NS",
	}, map[string]booking.Status{
		"MODIFIED": booking.StatusConfirmed,
	})
}

func TestStatusTable(t *testing.T) {
	table := testTable()

	t.Run("RoundTrip", func(t *testing.T) {
		for _, s := range booking.Statuses() {
			native, ok := table.ToProvider(s)
			require.True(t, ok, "missing outbound mapping for %s", s)
			assert.Equal(t, s, table.ToCanonical(native))
		}
	})

	t.Run("CaseInsensitiveInbound", func(t *testing.T) {
		assert.Equal(t, booking.StatusCheckedIn, table.ToCanonical(" in "))
	})

	t.Run("AliasInboundOnly", func(t *testing.T) {
		assert.Equal(t, booking.StatusConfirmed, table.ToCanonical("modified"))
		native, _ := table.ToProvider(booking.StatusConfirmed)
		assert.Equal(t, "OK", native)
	})

	t.Run("UnknownPassesThroughLowercased", func(t *testing.T) {
		assert.Equal(t, booking.Status("on_hold"), table.ToCanonical("ON_HOLD"))
	})

	t.Run("Missing", func(t *testing.T) {
		assert.Empty(t, table.Missing())
		partial := NewStatusTable("partial", map[booking.Status]string{booking.StatusConfirmed: "OK"}, nil)
		assert.Len(t, partial.Missing(), 4)
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{APIKey: "k", PropertyID: "p"}.Validate())

	err := Config{PropertyID: "p"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	err = Config{APIKey: "k", PropertyID: "p", Endpoint: "not a url"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_BaseURL(t *testing.T) {
	assert.Equal(t, "https://default.example", Config{}.BaseURL("https://default.example/"))
	assert.Equal(t, "http://localhost:9000", Config{Endpoint: "http://localhost:9000/"}.BaseURL("https://default.example"))
}

type stubProvider struct{ name string }

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) FetchBookings(context.Context, booking.DateRange) ([]booking.CanonicalBooking, error) {
	return nil, nil
}
func (s stubProvider) SyncAvailability(context.Context, string, time.Time, int) bool { return true }
func (s stubProvider) SyncRates(context.Context, string, time.Time, decimal.Decimal) bool {
	return true
}
func (s stubProvider) UpdateBookingStatus(context.Context, string, booking.Status) bool { return true }
func (s stubProvider) Statuses() *StatusTable                                         { return testTable() }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Booking.com", func(cfg Config, doer Doer, logger *zap.Logger) Provider {
		return stubProvider{name: "booking.com"}
	})

	assert.True(t, reg.Has("booking.com"))
	assert.True(t, reg.Has(" BOOKING.COM "))
	assert.Equal(t, []string{"booking.com"}, reg.Names())

	p, err := reg.New("booking.com", Config{APIKey: "k", PropertyID: "p"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "booking.com", p.Name())

	_, err = reg.New("trivago", Config{APIKey: "k", PropertyID: "p"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = reg.New("booking.com", Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTransport_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "1", r.URL.Query().Get("page"))
			user, pass, _ := r.BasicAuth()
			assert.Equal(t, "key", user)
			assert.Equal(t, "secret", pass)
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("maintenance window"))
		}
	}))
	defer srv.Close()

	tr := NewTransport("test", srv.Client())

	t.Run("Success", func(t *testing.T) {
		resp, err := tr.Do(context.Background(), Request{
			Method: http.MethodGet,
			URL:    srv.URL + "/ok",
			Query:  map[string][]string{"page": {"1"}},
			Header: BasicHeader("key", "secret", "application/json"),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		_, err := tr.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL + "/down"})
		require.Error(t, err)

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
		assert.Contains(t, te.Status, "503")
		assert.Contains(t, te.Status, "maintenance window")
	})

	t.Run("Timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := tr.Do(ctx, Request{Method: http.MethodGet, URL: srv.URL + "/slow"})
		require.Error(t, err)
		assert.True(t, IsTransportError(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestTransport_Push(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/reject" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tr := NewTransport("test", srv.Client())
	assert.True(t, tr.Push(context.Background(), Request{Method: http.MethodPost, URL: srv.URL + "/ok"}, zap.NewNop()))
	assert.False(t, tr.Push(context.Background(), Request{Method: http.MethodPost, URL: srv.URL + "/reject"}, zap.NewNop()))
}

type xmlItem struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name"`
}

func TestDecodeXMLElements(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<items>
  <meta><item id="nested"/></meta>
  <item id="a-1" kind="x"><name>First</name></item>
  <item id="a-2"/>
</items>`)

	got, err := DecodeXMLElements[xmlItem](body, "items", "item")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a-1", got[0].Value.ID)
	assert.Equal(t, "First", got[0].Value.Name)
	assert.Equal(t, `<item id="a-1" kind="x"><name>First</name></item>`, got[0].Raw)
	assert.Equal(t, `<item id="a-2"/>`, got[1].Raw)

	_, err = DecodeXMLElements[xmlItem]([]byte(`<other/>`), "items", "item")
	assert.ErrorContains(t, err, "unexpected root <other>")

	_, err = DecodeXMLElements[xmlItem]([]byte(``), "items", "item")
	assert.ErrorContains(t, err, "missing <items>")

	_, err = DecodeXMLElements[xmlItem]([]byte(`<items><item id="a-1">`), "items", "item")
	assert.Error(t, err)
}
