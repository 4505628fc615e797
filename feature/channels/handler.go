package channels

import (
	"errors"
	"strconv"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/channel"
	"channel-manager/core/logger"
	"channel-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for channels.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the channel routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/channels")
	group.Get("/", h.HandleListChannels)
	group.Post("/", h.HandleCreateChannel)
	group.Post("/:id/sync", h.HandleSync)
	group.Post("/:id/availability", h.HandlePushAvailability)
	group.Post("/:id/rates", h.HandlePushRates)
	group.Post("/:id/bookings/:externalId/status", h.HandleUpdateBookingStatus)
	group.Get("/:name/runs", h.HandleListRuns)
	group.Get("/:name/archive", h.HandleListArchive)
}

// CreateChannelRequest is the body of POST /channels.
type CreateChannelRequest struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Credentials channel.Config `json:"credentials"`
}

// SyncRequest is the body of POST /channels/{id}/sync. Empty dates select
// the configured default window starting today.
type SyncRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AvailabilityRequest is the body of POST /channels/{id}/availability.
type AvailabilityRequest struct {
	RoomType string `json:"room_type"`
	Date     string `json:"date"`
	Count    int    `json:"count"`
}

// RateRequest is the body of POST /channels/{id}/rates.
type RateRequest struct {
	RoomType string          `json:"room_type"`
	Date     string          `json:"date"`
	Rate     decimal.Decimal `json:"rate"`
}

// StatusRequest is the body of POST /channels/{id}/bookings/{externalId}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// PushResponse reports whether the channel accepted a push.
type PushResponse struct {
	OK bool `json:"ok"`
}

// HandleListChannels returns the active channels.
// @Summary List Channels
// @Description List every active channel account. Credentials are never returned.
// @Tags channels
// @Produce json
// @Success 200 {array} Channel
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /channels [get]
func (h *Handler) HandleListChannels(c *fiber.Ctx) error {
	chans, err := h.service.ActiveChannels(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(chans)
}

// HandleCreateChannel stores a new channel account.
// @Summary Create Channel
// @Tags channels
// @Accept json
// @Produce json
// @Param request body CreateChannelRequest true "Channel account"
// @Success 201 {object} Channel
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /channels [post]
func (h *Handler) HandleCreateChannel(c *fiber.Ctx) error {
	var req CreateChannelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	ch, err := h.service.CreateChannel(c.Context(), req.Name, req.DisplayName, req.Credentials)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

// HandleSync fetches and reconciles the bookings of one channel.
// @Summary Sync Channel Bookings
// @Description Fetch bookings for the window and reconcile them. A partial run still returns 200.
// @Tags channels
// @Accept json
// @Produce json
// @Param id path int true "Channel ID"
// @Param request body SyncRequest false "Date window"
// @Success 200 {object} booking.SyncRunLog
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Channel Not Found"
// @Failure 502 {object} map[string]string "Channel Unreachable"
// @Router /channels/{id}/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	id, err := channelID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req SyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	var window booking.DateRange
	if req.From == "" && req.To == "" {
		window = booking.NewDateRange(time.Now(), h.service.settings.SyncWindowDays)
	} else if window, err = booking.ParseDateRange(req.From, req.To); err != nil {
		return badRequest(c, err.Error())
	}

	run, err := h.service.SyncChannel(c.Context(), id, window)
	if err != nil {
		var fatal *reconcile.BatchFatalError
		if errors.As(err, &fatal) && channel.IsTransportError(err) {
			logger.WithRayID(h.service.logger, c).Warn("Channel sync failed", zap.Uint("channel_id", id), zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":      err.Error(),
				"run_log_id": fatal.RunLogID,
			})
		}
		return h.fail(c, err)
	}
	return c.JSON(run)
}

// HandlePushAvailability pushes a room count to one channel.
// @Summary Push Availability
// @Tags channels
// @Accept json
// @Produce json
// @Param id path int true "Channel ID"
// @Param request body AvailabilityRequest true "Availability"
// @Success 200 {object} PushResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Channel Not Found"
// @Router /channels/{id}/availability [post]
func (h *Handler) HandlePushAvailability(c *fiber.Ctx) error {
	var req AvailabilityRequest
	target, date, err := h.pushTarget(c, &req, func() (string, string) { return req.RoomType, req.Date })
	if err != nil {
		return h.fail(c, err)
	}
	if req.Count < 0 {
		return badRequest(c, "count must not be negative")
	}
	ok := h.service.PushAvailability(c.Context(), target, req.RoomType, date, req.Count)
	return c.JSON(PushResponse{OK: ok})
}

// HandlePushRates pushes a nightly rate to one channel.
// @Summary Push Rates
// @Tags channels
// @Accept json
// @Produce json
// @Param id path int true "Channel ID"
// @Param request body RateRequest true "Rate"
// @Success 200 {object} PushResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Channel Not Found"
// @Router /channels/{id}/rates [post]
func (h *Handler) HandlePushRates(c *fiber.Ctx) error {
	var req RateRequest
	target, date, err := h.pushTarget(c, &req, func() (string, string) { return req.RoomType, req.Date })
	if err != nil {
		return h.fail(c, err)
	}
	if req.Rate.IsNegative() {
		return badRequest(c, "rate must not be negative")
	}
	ok := h.service.PushRates(c.Context(), target, req.RoomType, date, req.Rate)
	return c.JSON(PushResponse{OK: ok})
}

// HandleUpdateBookingStatus pushes a booking status change to one channel.
// @Summary Update Booking Status
// @Tags channels
// @Accept json
// @Produce json
// @Param id path int true "Channel ID"
// @Param externalId path string true "Channel booking id"
// @Param request body StatusRequest true "Canonical status"
// @Success 200 {object} PushResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Channel Not Found"
// @Router /channels/{id}/bookings/{externalId}/status [post]
func (h *Handler) HandleUpdateBookingStatus(c *fiber.Ctx) error {
	id, err := channelID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	status, ok := booking.ParseStatus(req.Status)
	if !ok {
		return badRequest(c, "unknown booking status "+strconv.Quote(req.Status))
	}

	ch, err := h.service.Channel(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	accepted, err := h.service.UpdateBookingStatus(c.Context(), ch.Target(), c.Params("externalId"), status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(PushResponse{OK: accepted})
}

// HandleListRuns returns the recent sync runs of a channel.
// @Summary List Sync Runs
// @Tags channels
// @Produce json
// @Param name path string true "Channel name (e.g. 'booking.com')"
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} booking.SyncRunLog
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /channels/{name}/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.service.ListRuns(c.Context(), c.Params("name"), c.QueryInt("limit", 50))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(runs)
}

// HandleListArchive lists archived fetch payloads of a channel.
// @Summary List Archived Payloads
// @Tags channels
// @Produce json
// @Param name path string true "Channel name"
// @Param month query string false "Month as yyyy/mm"
// @Success 200 {array} string
// @Failure 404 {object} map[string]string "Archive Disabled"
// @Router /channels/{name}/archive [get]
func (h *Handler) HandleListArchive(c *fiber.Ctx) error {
	if h.service.archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "payload archive is disabled"})
	}
	prefix := channel.NormalizeName(c.Params("name")) + "/"
	if month := c.Query("month"); month != "" {
		prefix += month + "/"
	}
	keys, err := h.service.ListArchive(c.Context(), prefix)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(keys)
}

// pushTarget parses the channel id and body of a push request and resolves
// the stored channel.
func (h *Handler) pushTarget(c *fiber.Ctx, req any, fields func() (string, string)) (Target, time.Time, error) {
	id, err := channelID(c)
	if err != nil {
		return Target{}, time.Time{}, invalid(err.Error())
	}
	if err := c.BodyParser(req); err != nil {
		return Target{}, time.Time{}, invalid("invalid request body")
	}
	roomType, rawDate := fields()
	if roomType == "" {
		return Target{}, time.Time{}, invalid("room_type is required")
	}
	date, err := booking.ParseDate(rawDate)
	if err != nil {
		return Target{}, time.Time{}, invalid("invalid date " + strconv.Quote(rawDate))
	}
	ch, err := h.service.Channel(c.Context(), id)
	if err != nil {
		return Target{}, time.Time{}, err
	}
	return ch.Target(), date, nil
}

// requestError is a client error detected while parsing a request.
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

func invalid(msg string) error {
	return &requestError{msg: msg}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return badRequest(c, reqErr.msg)
	case errors.Is(err, ErrChannelNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, channel.ErrUnknownProvider), errors.Is(err, channel.ErrInvalidConfig):
		return badRequest(c, err.Error())
	case channel.IsTransportError(err):
		logger.WithRayID(h.service.logger, c).Warn("Channel request failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error("Channel request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func channelID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid channel id")
	}
	return uint(id), nil
}
