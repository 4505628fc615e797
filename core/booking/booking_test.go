package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
		ok   bool
	}{
		{"confirmed", StatusConfirmed, true},
		{"Checked_In", StatusCheckedIn, true},
		{"CHECKED-OUT", StatusCheckedOut, true},
		{"no show", StatusNoShow, true},
		{"canceled", StatusCancelled, true},
		{"pending", Status("pending"), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseStatus(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCanonicalBooking_Overwrite(t *testing.T) {
	existing := CanonicalBooking{
		ID:                7,
		ChannelID:         1,
		ChannelName:       "agoda",
		ExternalBookingID: "A-1",
		GuestName:         "Old",
		Status:            StatusConfirmed,
	}
	incoming := CanonicalBooking{
		ChannelName:       "agoda",
		ExternalBookingID: "A-1",
		GuestName:         "New",
		GuestEmail:        "new@example.com",
		TotalAmount:       decimal.RequireFromString("120.50"),
		Status:            StatusCancelled,
	}

	existing.Overwrite(incoming)

	assert.Equal(t, uint(7), existing.ID)
	assert.Equal(t, uint(1), existing.ChannelID, "zero channel id must not clobber")
	assert.Equal(t, "New", existing.GuestName)
	assert.Equal(t, "new@example.com", existing.GuestEmail)
	assert.True(t, existing.TotalAmount.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, StatusCancelled, existing.Status)
}

func TestRunRecorder(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)

	t.Run("Success", func(t *testing.T) {
		r := StartRun(1, "agoda", SyncTypeBookings, start)
		r.Success()
		r.Success()
		log := r.Finish(end)

		assert.Equal(t, RunStatusSuccess, log.Status)
		assert.Equal(t, 2, log.RecordsProcessed)
		assert.Equal(t, 2, log.RecordsSuccess)
		assert.Empty(t, log.ErrorMessage)
		assert.InDelta(t, 1.5, log.DurationSeconds, 0.001)
	})

	t.Run("Partial", func(t *testing.T) {
		r := StartRun(1, "agoda", SyncTypeBookings, start)
		r.Success()
		r.Failure("A-2", errors.New("boom"))
		r.Failure("", errors.New("bad"))
		log := r.Finish(end)

		assert.Equal(t, RunStatusPartial, log.Status)
		assert.Equal(t, log.RecordsProcessed, log.RecordsSuccess+log.RecordsFailed)
		assert.Equal(t, "A-2: boom; record #3: bad", log.ErrorMessage)
	})

	t.Run("Fatal", func(t *testing.T) {
		r := StartRun(1, "agoda", SyncTypeBookings, start)
		r.Success()
		log := r.Fatal(errors.New("connection refused"), end)

		assert.Equal(t, RunStatusError, log.Status)
		assert.Zero(t, log.RecordsProcessed)
		assert.Zero(t, log.RecordsSuccess)
		assert.Zero(t, log.RecordsFailed)
		assert.Equal(t, "connection refused", log.ErrorMessage)
	})

	t.Run("SealedOnce", func(t *testing.T) {
		r := StartRun(1, "agoda", SyncTypeBookings, start)
		first := r.Finish(end)
		second := r.Finish(end.Add(time.Hour))
		assert.Equal(t, first.CompletedAt, second.CompletedAt)
	})
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", r.FromString())
	assert.Equal(t, "2025-01-31", r.ToString())

	_, err = ParseDateRange("2025-02-01", "2025-01-01")
	assert.Error(t, err)

	_, err = ParseDateRange("yesterday", "2025-01-01")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01T14:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", d.Format(DateLayout))

	_, err = ParseDate("")
	assert.Error(t, err)
}
