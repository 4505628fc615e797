package queue

import (
	"encoding/json"
	"errors"
	"strconv"

	"channel-manager/core/logger"
	syncqueue "channel-manager/core/queue"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

// Handler handles HTTP requests for the sync queue.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the queue routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/queue")
	group.Post("/", h.HandleEnqueue)
	group.Post("/drain", h.HandleDrain)
	group.Get("/status", h.HandleStatus)
	group.Get("/items", h.HandleListItems)
	group.Post("/items/:id/requeue", h.HandleRequeue)
}

// EnqueueRequest is the body of POST /queue.
type EnqueueRequest struct {
	EntityType string          `json:"entity_type" validate:"required"`
	EntityID   string          `json:"entity_id" validate:"required"`
	Operation  string          `json:"operation" validate:"required,oneof=create update delete"`
	Payload    json.RawMessage `json:"payload" swaggertype:"object"`
}

// HandleEnqueue records a local change.
// @Summary Enqueue Change
// @Description Append a pending item; it is propagated on the next drain.
// @Tags queue
// @Accept json
// @Produce json
// @Param request body EnqueueRequest true "Change"
// @Success 202 {object} syncqueue.Item
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /queue [post]
func (h *Handler) HandleEnqueue(c *fiber.Ctx) error {
	var req EnqueueRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.service.EnqueueChange(c.Context(), req.EntityType, req.EntityID, syncqueue.Operation(req.Operation), req.Payload)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(item)
}

// HandleDrain runs one drain now.
// @Summary Drain Queue
// @Description Process up to one batch of pending items. Skipped is true when a drain is already running.
// @Tags queue
// @Produce json
// @Success 200 {object} syncqueue.DrainResult
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /queue/drain [post]
func (h *Handler) HandleDrain(c *fiber.Ctx) error {
	res, err := h.service.DrainQueue(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleStatus returns the queue status.
// @Summary Queue Status
// @Tags queue
// @Produce json
// @Success 200 {object} syncqueue.QueueStatus
// @Router /queue/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	st, err := h.service.GetQueueStatus(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(st)
}

// HandleListItems lists queue items.
// @Summary List Queue Items
// @Tags queue
// @Produce json
// @Param status query string false "pending, completed or failed"
// @Param limit query int false "Maximum number of items" default(50)
// @Success 200 {array} syncqueue.Item
// @Router /queue/items [get]
func (h *Handler) HandleListItems(c *fiber.Ctx) error {
	status := syncqueue.Status(c.Query("status"))
	switch status {
	case "", syncqueue.StatusPending, syncqueue.StatusCompleted, syncqueue.StatusFailed:
	default:
		return badRequest(c, "unknown status "+strconv.Quote(string(status)))
	}
	items, err := h.service.ListItems(c.Context(), status, c.QueryInt("limit", 50))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(items)
}

// HandleRequeue moves a failed item back to pending.
// @Summary Requeue Item
// @Tags queue
// @Produce json
// @Param id path int true "Queue item ID"
// @Success 200 {object} syncqueue.Item
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Item Not Failed"
// @Router /queue/items/{id}/requeue [post]
func (h *Handler) HandleRequeue(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return badRequest(c, "invalid item id")
	}
	item, err := h.service.Requeue(c.Context(), uint(id))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, syncqueue.ErrInvalidItem):
		return badRequest(c, err.Error())
	case errors.Is(err, syncqueue.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, syncqueue.ErrNotRequeueable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error("Queue request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
