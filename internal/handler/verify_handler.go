package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"verify-proxy/internal/domain"
)

// VerificationService is the orchestration port consumed by the transport.
type VerificationService interface {
	Verify(ctx context.Context, email string, key string) (domain.VerificationResult, error)
	VerifyBatch(ctx context.Context, emails []string, key string) (*domain.BatchReport, error)
}

type VerifyHandler struct {
	service VerificationService
}

func NewVerifyHandler(service VerificationService) (*VerifyHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("verification service is required")
	}
	return &VerifyHandler{service: service}, nil
}

func RegisterVerifyRoutes(router fiber.Router, service VerificationService) error {
	h, err := NewVerifyHandler(service)
	if err != nil {
		return err
	}

	router.Get("/verify", h.VerifyEmail)
	router.Post("/verify/batch", h.VerifyBatch)

	return nil
}

type batchRequest struct {
	Emails []string `json:"emails"`
	Key    string   `json:"key"`
}

func (h *VerifyHandler) VerifyEmail(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	key := strings.TrimSpace(c.Query("key"))
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email query parameter is required")
	}
	if key == "" {
		return fiber.NewError(fiber.StatusBadRequest, "key query parameter is required")
	}

	// Domain sentinel errors surface unwrapped; the transport error
	// handler maps them to their statuses.
	result, err := h.service.Verify(c.UserContext(), email, key)
	if err != nil {
		return err
	}

	if !result.Success {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     result.Error,
			"isTimeout": result.IsTimeout,
		})
	}

	// The proxy answers 200 for any upstream response; the upstream's own
	// verdict travels in the body and this header.
	c.Set("X-Upstream-Status", strconv.Itoa(result.StatusCode))
	return c.Status(fiber.StatusOK).SendString(result.Body)
}

func (h *VerifyHandler) VerifyBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Key) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "key is required")
	}

	report, err := h.service.VerifyBatch(c.UserContext(), req.Emails, req.Key)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(report)
}
