package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const linkTokenTTL = 4 * time.Hour

func (s *Server) createLinkToken(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"link_token": "link-sandbox-" + uuid.NewString(),
		"expiration": s.now().Add(linkTokenTTL).UTC().Format(time.RFC3339),
		"request_id": c.Locals("request_id"),
	})
}

func (s *Server) exchangePublicToken(c *fiber.Ctx) error {
	var in struct {
		PublicToken string `json:"public_token"`
	}
	if err := decode(c, &in); err != nil {
		return err
	}
	if strings.TrimSpace(in.PublicToken) == "" {
		return badRequest("validation_error", "public_token is required")
	}
	return c.JSON(fiber.Map{"message": "Public token exchanged successfully"})
}
