package handlers

import (
	"strings"

	"github.com/google/uuid"

	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	Messages *repos.MessageRepo
}

// POST /api/v1/contact
func (h *MessageHandler) Submit(c *fiber.Ctx) error {
	var in struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid name")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid email")
	}
	body := strings.TrimSpace(in.Message)
	if body == "" {
		return jsonError(c, fiber.StatusBadRequest, "message is required")
	}

	m := &domain.Message{
		ID:      uuid.NewString(),
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(in.Subject),
		Body:    body,
	}
	if err := h.Messages.Insert(m); err != nil {
		applog.Error(c, "contact.submit.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not send message")
	}
	applog.Info(c, "contact.submit", map[string]any{"email": email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Thank you! We'll get back to you soon."})
}
