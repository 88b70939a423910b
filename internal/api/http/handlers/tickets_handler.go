package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List handles GET /api/view_tickets?status=a,b&priority=c&customer_id=&assigned_to=me&limit=&offset=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	var query dto.TicketListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	agent, err := auth.CurrentAgent(c)
	if err != nil {
		return err
	}
	filter, err := query.Filter(agent.ID)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// Create handles POST /api/add_tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	payload, err := decodePayload(c)
	if err != nil {
		return err
	}
	res, err := h.tickets.Create(c.UserContext(), actorID(c), payload)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketCreateResponse(res))
}

// Update handles PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	payload, err := decodePayload(c)
	if err != nil {
		return err
	}
	res, err := h.tickets.Update(c.UserContext(), actorID(c), id, payload)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketUpdateResponse(res))
}

// Delete handles DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), actorID(c), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Ticket deleted successfully"})
}

// Assign handles POST /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	agent, err := auth.CurrentAgent(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.AssignToAgent(c.UserContext(), agent, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":        "Ticket assigned",
		"id":             ticket.ID,
		"assigned_to_id": ticket.AssignedToID,
	})
}
