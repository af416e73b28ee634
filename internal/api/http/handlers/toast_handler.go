package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/api/dto"
	"github.com/spec-kit/ticketapp/internal/toast"
)

// ToastHandler exposes the notification slot.
type ToastHandler struct {
	queue *toast.Queue
}

// NewToastHandler constructs handler.
func NewToastHandler(queue *toast.Queue) *ToastHandler {
	return &ToastHandler{queue: queue}
}

// Current GET /toast.
func (h *ToastHandler) Current(c *fiber.Ctx) error {
	current, ok := h.queue.Current()
	if !ok {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.JSON(fiber.Map{"data": dto.ToastResponse{Message: current.Message, Type: current.Kind}})
}
