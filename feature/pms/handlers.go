package pms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/channel"
	"channel-manager/core/queue"
	"channel-manager/core/utils"

	"go.uber.org/zap"
)

// Entity types handled by this package.
const (
	EntityReservation = "reservation"
	EntityRoom        = "room"
	EntityGuest       = "guest"
)

// BookingMirror upserts a single canonical booking.
type BookingMirror interface {
	UpsertBooking(ctx context.Context, channelID uint, b booking.CanonicalBooking) (*booking.CanonicalBooking, bool, error)
}

// AvailabilityPusher pushes a room count to every active channel.
type AvailabilityPusher interface {
	PushAvailabilityToActive(ctx context.Context, roomType string, date time.Time, count int) (int, error)
}

// ProviderSet reports whether a reservation source is a known channel.
type ProviderSet interface {
	Has(name string) bool
}

// Handlers implements the queue handlers for local records.
type Handlers struct {
	store     Store
	mirror    BookingMirror
	pusher    AvailabilityPusher
	providers ProviderSet
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandlers creates the handlers.
func NewHandlers(store Store, mirror BookingMirror, pusher AvailabilityPusher, providers ProviderSet, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:     store,
		mirror:    mirror,
		pusher:    pusher,
		providers: providers,
		logger:    logger,
		now:       time.Now,
	}
}

// Register installs the handlers on p.
func (h *Handlers) Register(p *queue.Processor) {
	p.Handle(EntityReservation, queue.HandlerFunc(h.HandleReservation))
	p.Handle(EntityRoom, queue.HandlerFunc(h.HandleRoom))
	p.Handle(EntityGuest, queue.HandlerFunc(h.HandleGuest))
}

// HandleReservation mirrors channel-sourced reservations into the canonical
// booking table and applies the stay status to the room.
func (h *Handlers) HandleReservation(ctx context.Context, task queue.Task) error {
	res, err := h.reservation(ctx, task)
	if err != nil {
		return err
	}
	if task.Operation == queue.OperationDelete {
		res.Status = string(booking.StatusCancelled)
	}
	status := normalizeStatus(res.Status)

	if err := h.applyOccupancy(ctx, res, status, task.Operation); err != nil {
		return err
	}

	if source := channel.NormalizeName(res.Source); source != "" && h.providers.Has(source) {
		return h.mirrorReservation(ctx, source, res, status, task)
	}
	return nil
}

func (h *Handlers) applyOccupancy(ctx context.Context, res *Reservation, status booking.Status, op queue.Operation) error {
	if res.RoomID == "" {
		return nil
	}
	roomStatus, ok := occupancy(status)
	if !ok {
		return nil
	}
	err := h.store.SetRoomStatus(ctx, res.RoomID, roomStatus)
	if err != nil && op == queue.OperationDelete && errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("set room occupancy: %w", err)
	}
	h.logger.Debug("Room occupancy updated",
		zap.String("reservation_id", res.ID),
		zap.String("room_id", res.RoomID),
		zap.String("room_status", roomStatus))
	return nil
}

func (h *Handlers) mirrorReservation(ctx context.Context, source string, res *Reservation, status booking.Status, task queue.Task) error {
	externalID := res.ChannelBookingID
	if externalID == "" {
		externalID = res.ID
	}
	cb := booking.CanonicalBooking{
		ChannelName:       source,
		ExternalBookingID: externalID,
		GuestName:         res.GuestName,
		GuestEmail:        res.GuestEmail,
		RoomType:          res.RoomType,
		CheckIn:           res.CheckIn,
		CheckOut:          res.CheckOut,
		TotalAmount:       res.TotalAmount,
		Status:            status,
		RawPayload:        booking.RawJSON(task.Payload),
	}
	if _, _, err := h.mirror.UpsertBooking(ctx, 0, cb); err != nil {
		return fmt.Errorf("mirror reservation %s: %w", res.ID, err)
	}
	return nil
}

// reservation loads the stored reservation, if any, and overlays the fields
// present in the payload.
func (h *Handlers) reservation(ctx context.Context, task queue.Task) (*Reservation, error) {
	res, err := h.store.GetReservation(ctx, task.EntityID)
	switch {
	case errors.Is(err, ErrNotFound):
		if len(task.Payload) == 0 {
			return nil, err
		}
		res = &Reservation{ID: task.EntityID}
	case err != nil:
		return nil, err
	}

	p := task.Payload
	setString(p, "source", &res.Source)
	setString(p, "channel_booking_id", &res.ChannelBookingID)
	setString(p, "guest_id", &res.GuestID)
	setString(p, "guest_name", &res.GuestName)
	setString(p, "guest_email", &res.GuestEmail)
	setString(p, "room_id", &res.RoomID)
	setString(p, "room_type", &res.RoomType)
	setString(p, "status", &res.Status)
	if err := setDate(p, "check_in", &res.CheckIn); err != nil {
		return nil, err
	}
	if err := setDate(p, "check_out", &res.CheckOut); err != nil {
		return nil, err
	}
	if v, ok := lookup(p, "total_amount"); ok {
		res.TotalAmount, _ = utils.ToDecimal(v)
	}
	return res, nil
}

// HandleRoom pushes the current availability of the room's type to every
// active channel for today. Channel rejections are logged, not retried.
func (h *Handlers) HandleRoom(ctx context.Context, task queue.Task) error {
	var roomType string
	setString(task.Payload, "room_type", &roomType)
	if roomType == "" {
		room, err := h.store.GetRoom(ctx, task.EntityID)
		if err != nil {
			return err
		}
		roomType = room.RoomType
	}
	if roomType == "" {
		return fmt.Errorf("room %s has no room type", task.EntityID)
	}

	count, err := h.store.CountAvailable(ctx, roomType)
	if err != nil {
		return fmt.Errorf("count available %s: %w", roomType, err)
	}
	accepted, err := h.pusher.PushAvailabilityToActive(ctx, roomType, h.now(), int(count))
	if err != nil {
		return err
	}
	h.logger.Info("Availability pushed",
		zap.String("room_type", roomType),
		zap.Int64("available", count),
		zap.Int("accepted", accepted))
	return nil
}

// HandleGuest recomputes loyalty on update. Creates and deletes carry no
// loyalty change.
func (h *Handlers) HandleGuest(ctx context.Context, task queue.Task) error {
	if task.Operation != queue.OperationUpdate {
		return nil
	}
	g, err := h.store.GetGuest(ctx, task.EntityID)
	if err != nil {
		return err
	}
	if v, ok := lookup(task.Payload, "total_spent"); ok {
		spent, ok := utils.ToDecimal(v)
		if !ok {
			return fmt.Errorf("invalid total_spent %v", v)
		}
		g.TotalSpent = spent
	}
	g.LoyaltyPoints = LoyaltyPoints(g.TotalSpent)
	g.Tier = TierFor(g.LoyaltyPoints)
	if err := h.store.SaveLoyalty(ctx, g); err != nil {
		return fmt.Errorf("save loyalty: %w", err)
	}
	return nil
}

func normalizeStatus(raw string) booking.Status {
	if st, ok := booking.ParseStatus(raw); ok {
		return st
	}
	return booking.Status(strings.ToLower(strings.TrimSpace(raw)))
}

// occupancy maps a stay status to the room status it implies.
func occupancy(st booking.Status) (string, bool) {
	switch st {
	case booking.StatusConfirmed, booking.StatusCheckedIn:
		return RoomOccupied, true
	case booking.StatusCheckedOut, booking.StatusCancelled:
		return RoomAvailable, true
	}
	return "", false
}

// lookup reads a payload field by its snake_case key, falling back to the
// camelCase spelling (room_id, roomId).
func lookup(p map[string]any, key string) (any, bool) {
	if v, ok := p[key]; ok && v != nil {
		return v, true
	}
	if v, ok := p[camelCase(key)]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func camelCase(key string) string {
	parts := strings.Split(key, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func setString(p map[string]any, key string, dst *string) {
	if v, ok := lookup(p, key); ok {
		*dst = utils.ToString(v)
	}
}

func setDate(p map[string]any, key string, dst *time.Time) error {
	v, ok := lookup(p, key)
	if !ok {
		return nil
	}
	t, err := booking.ParseDate(utils.ToString(v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = t
	return nil
}
