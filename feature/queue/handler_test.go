package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"channel-manager/core/database"
	syncqueue "channel-manager/core/queue"
	"channel-manager/feature/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T, handler syncqueue.HandlerFunc) *fiber.App {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, syncqueue.Models()...))

	store := syncqueue.NewGormStore(db)
	proc := syncqueue.NewProcessor(store, syncqueue.Config{MaxRetries: 1}, zap.NewNop())
	proc.Handle("room", handler)

	feature := queue.NewFeature(queue.NewService(syncqueue.New(store), proc, zap.NewNop()))
	assert.Equal(t, "queue", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestQueueAPI(t *testing.T) {
	var seen []syncqueue.Task
	app := setup(t, func(_ context.Context, task syncqueue.Task) error {
		seen = append(seen, task)
		if task.EntityID == "room-bad" {
			return errors.New("channel down")
		}
		return nil
	})

	code, body := call(t, app, http.MethodPost, "/queue", `{"entity_type":"Room","entity_id":"room-101","operation":"update","payload":{"status":"maintenance"}}`)
	require.Equal(t, http.StatusAccepted, code, string(body))
	var item syncqueue.Item
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, "room", item.EntityType)
	assert.Equal(t, syncqueue.StatusPending, item.Status)
	assert.Zero(t, item.RetryCount)

	code, _ = call(t, app, http.MethodPost, "/queue", `{"entity_type":"room","entity_id":"room-bad","operation":"update"}`)
	require.Equal(t, http.StatusAccepted, code)

	code, body = call(t, app, http.MethodGet, "/queue/status", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"pending_count":2,"failed_count":0,"is_processing":false}`, string(body))

	code, body = call(t, app, http.MethodPost, "/queue/drain", "")
	require.Equal(t, http.StatusOK, code)
	var res syncqueue.DrainResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, syncqueue.DrainResult{Processed: 2, Completed: 1, Failed: 1}, res)
	require.Len(t, seen, 2)
	assert.Equal(t, "maintenance", seen[0].Payload["status"])
	assert.NotNil(t, seen[1].Payload)

	code, body = call(t, app, http.MethodGet, "/queue/items?status=failed", "")
	require.Equal(t, http.StatusOK, code)
	var failed []syncqueue.Item
	require.NoError(t, json.Unmarshal(body, &failed))
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].LastError, "channel down")

	code, body = call(t, app, http.MethodPost, "/queue/items/"+jsonID(failed[0].ID)+"/requeue", "")
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, syncqueue.StatusPending, item.Status)
	assert.Equal(t, 1, item.RetryCount)

	code, _ = call(t, app, http.MethodPost, "/queue/items/"+jsonID(failed[0].ID)+"/requeue", "")
	assert.Equal(t, http.StatusConflict, code)
}

func TestQueueAPI_Validation(t *testing.T) {
	app := setup(t, func(context.Context, syncqueue.Task) error { return nil })

	code, _ := call(t, app, http.MethodPost, "/queue", `{"entity_type":"room","entity_id":"r1","operation":"upsert"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, app, http.MethodPost, "/queue", `{"entity_type":"room","operation":"create"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, app, http.MethodPost, "/queue", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, app, http.MethodGet, "/queue/items?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, app, http.MethodPost, "/queue/items/99/requeue", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, app, http.MethodPost, "/queue/items/x/requeue", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
