package inventory

import (
	"github.com/gofiber/fiber/v2"

	"inventory-server/core/logger"
	"inventory-server/feature/inventory/protocol"
)

// Handler handles HTTP requests for inventory submissions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inventory routes. Legacy agents post to
// the bare front route, newer ones to /inventory.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/", h.HandleSubmission)

	group := app.Group("/inventory")
	group.Post("/", h.HandleSubmission)
	group.Get("/encodings", h.HandleEncodings)
}

// HandleSubmission accepts one agent submission.
// @Summary Submit inventory
// @Description Accepts an agent inventory submission in XML or JSON, optionally compressed (zlib, gzip, brotli, deflate), and reconciles it against the database.
// @Tags inventory
// @Accept json
// @Accept xml
// @Produce json
// @Produce xml
// @Param Agent-ID header string false "Agent identity; unlocks structured error payloads"
// @Success 200 {object} map[string]interface{} "Reconciliation result"
// @Failure 400 {object} map[string]interface{} "Malformed body"
// @Failure 415 {object} map[string]interface{} "Unsupported compression codec"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Router /inventory [post]
func (h *Handler) HandleSubmission(c *fiber.Ctx) error {
	agentID := c.Get(h.service.conf.AgentHeader)
	l := logger.WithAgent(logger.WithRayID(h.service.logger, c), agentID)
	result := h.service.HandleSubmission(c.Context(), c.Body(), c.Get(fiber.HeaderContentType), agentID)

	if result.Status != fiber.StatusOK {
		l.Warn("submission rejected")
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	return c.Status(result.Status).Send(result.Body)
}

// HandleEncodings advertises the accepted compression encodings.
// @Summary List accepted encodings
// @Description Lists the compression encodings the server accepts for submissions.
// @Tags inventory
// @Produce json
// @Success 200 {object} map[string]interface{} "Accepted encodings"
// @Router /inventory/encodings [get]
func (h *Handler) HandleEncodings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"encodings": protocol.AcceptedEncodings(h.service.conf.BrotliEnabled),
	})
}
