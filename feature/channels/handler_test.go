package channels_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"channel-manager/core/booking"
	"channel-manager/feature/channels"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, f *fixture) *fiber.App {
	t.Helper()
	app := fiber.New()
	feature := channels.NewFeature(f.service)
	assert.Equal(t, "channels", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHandleSync(t *testing.T) {
	f := setup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, expediaReservations)
	})
	app := newApp(t, f)

	resp, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/channels/%d/sync", f.channel.ID), `{"from":"2026-11-01","to":"2026-11-30"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var run booking.SyncRunLog
	require.NoError(t, json.Unmarshal(body, &run))
	assert.Equal(t, booking.RunStatusPartial, run.Status)
	assert.Equal(t, 2, run.RecordsProcessed)

	resp, body = doJSON(t, app, http.MethodGet, "/channels/expedia/runs?limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs []booking.SyncRunLog
	require.NoError(t, json.Unmarshal(body, &runs))
	assert.Len(t, runs, 1)
}

func TestHandleSync_Errors(t *testing.T) {
	f := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	app := newApp(t, f)

	resp, _ := doJSON(t, app, http.MethodPost, "/channels/abc/sync", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/channels/42/sync", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/channels/%d/sync", f.channel.ID), `{"from":"2026-11-30","to":"2026-11-01"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/channels/%d/sync", f.channel.ID), "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotZero(t, out["run_log_id"])
}

func TestHandlePushes(t *testing.T) {
	f := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	app := newApp(t, f)
	base := fmt.Sprintf("/channels/%d", f.channel.ID)

	resp, body := doJSON(t, app, http.MethodPost, base+"/availability", `{"room_type":"Suite","date":"2026-11-03","count":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	resp, body = doJSON(t, app, http.MethodPost, base+"/rates", `{"room_type":"Suite","date":"2026-11-03","rate":"149.90"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	resp, _ = doJSON(t, app, http.MethodPost, base+"/availability", `{"room_type":"Suite","date":"soon","count":3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/rates", `{"date":"2026-11-03","rate":10}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, base+"/bookings/EXP-900/status", `{"status":"checked-in"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	resp, _ = doJSON(t, app, http.MethodPost, base+"/bookings/EXP-900/status", `{"status":"vanished"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/channels/77/availability", `{"room_type":"Suite","date":"2026-11-03","count":3}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleChannels(t *testing.T) {
	f := setup(t, func(w http.ResponseWriter, r *http.Request) {})
	app := newApp(t, f)

	resp, body := doJSON(t, app, http.MethodPost, "/channels", `{"name":"airbnb","display_name":"Loft","credentials":{"api_key":"tok","property_id":"L-1"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.NotContains(t, string(body), "tok")

	resp, _ = doJSON(t, app, http.MethodPost, "/channels", `{"name":"trivago","credentials":{"api_key":"tok","property_id":"L-1"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/channels", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []channels.Channel
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 2)

	resp, _ = doJSON(t, app, http.MethodGet, "/channels/airbnb/archive", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
