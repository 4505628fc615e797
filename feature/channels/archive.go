package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archive stores the raw payloads of each inbound fetch in object storage.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{client: client, bucket: bucket, logger: logger, now: time.Now}
}

type archivedFetch struct {
	Channel      string            `json:"channel"`
	Window       booking.DateRange `json:"window"`
	FetchedAt    time.Time         `json:"fetched_at"`
	Count        int               `json:"count"`
	Reservations []json.RawMessage `json:"reservations"`
}

// ObjectName returns the key of a fetch archived at t.
func ObjectName(channelName string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%d.json", channelName, t.Year(), int(t.Month()), t.Day(), t.UnixNano())
}

// Store writes one object holding every raw payload of a fetch and returns its key.
func (a *Archive) Store(ctx context.Context, channelName string, window booking.DateRange, bookings []booking.CanonicalBooking) (string, error) {
	fetchedAt := a.now()
	doc := archivedFetch{
		Channel:      channelName,
		Window:       window,
		FetchedAt:    fetchedAt.UTC(),
		Count:        len(bookings),
		Reservations: make([]json.RawMessage, 0, len(bookings)),
	}
	for _, b := range bookings {
		if len(b.RawPayload) == 0 {
			continue
		}
		doc.Reservations = append(doc.Reservations, json.RawMessage(b.RawPayload))
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode archive: %w", err)
	}

	key := ObjectName(channelName, fetchedAt)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("put %s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

// Record archives a fetch and logs instead of failing.
func (a *Archive) Record(ctx context.Context, channelName string, window booking.DateRange, bookings []booking.CanonicalBooking) {
	key, err := a.Store(ctx, channelName, window, bookings)
	if err != nil {
		a.logger.Warn("Failed to archive channel payloads", zap.String("channel", channelName), zap.Error(err))
		return
	}
	a.logger.Debug("Archived channel payloads", zap.String("channel", channelName), zap.String("object", key))
}

// List returns the archived object keys of a channel under prefix (for
// example "booking.com/2026/10"), newest last.
func (a *Archive) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
