package handlers

import (
	"context"
	"time"

	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

const pingTimeout = 2 * time.Second

// HealthResponse reports whether the service can reach its store.
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
	Events   string `json:"events"`
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	service *services.ProductService
}

func NewHealthHandler(service *services.ProductService) *HealthHandler {
	return &HealthHandler{service: service}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth pings the database; an unreachable store answers 503.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Database: "ok",
		Events:   "disabled",
	}
	if h.service.EventsEnabled() {
		resp.Events = "enabled"
	}

	status := fiber.StatusOK
	if err := h.service.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "unavailable"
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
