package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/internal/service"
)

// CampaignServiceInterface defines the interface for campaign business logic.
type CampaignServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCampaignRequest) (int32, error)
	Get(ctx context.Context, campaignID int32) (*model.GetCampaignResponse, error)
}

// CampaignHandler handles HTTP requests for campaign operations.
type CampaignHandler struct {
	service   CampaignServiceInterface
	validator *validator.Validate
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(svc CampaignServiceInterface, v *validator.Validate) *CampaignHandler {
	return &CampaignHandler{service: svc, validator: v}
}

// CreateCampaign handles POST /campaign requests to create a new campaign.
func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req model.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	id, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrProbabilitySumExceeded) {
			return conflict(c, err.Error())
		}
		if errors.Is(err, service.ErrEmptyCouponTypes) {
			return badRequest(c, err.Error())
		}
		log.Error().Err(err).Msg("failed to create campaign")
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(model.CreateCampaignResponse{ID: id})
}

// GetCampaign handles GET /campaign/:id requests.
func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid request: id must be a number")
	}

	resp, err := h.service.Get(c.Context(), int32(id))
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			return notFound(c, "campaign not found")
		}
		log.Error().Err(err).Int64("campaign_id", id).Msg("failed to get campaign")
		return internalError(c)
	}

	return c.JSON(resp)
}

// formatValidationError converts validator errors into a single human message.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required":
			return "invalid request: " + fe.Field() + " is required"
		case "min":
			return "invalid request: " + fe.Field() + " must have at least one entry"
		case "max":
			return "invalid request: " + fe.Field() + " exceeds maximum length"
		case "gte", "lte":
			return "invalid request: " + fe.Field() + " is out of range"
		case "notblank":
			return "invalid request: " + fe.Field() + " cannot be whitespace only"
		default:
			return "invalid request: " + fe.Field() + " is invalid"
		}
	}
	return "invalid request"
}
