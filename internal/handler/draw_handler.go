package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/internal/service"
)

// DrawServiceInterface defines the interface for the draw engine.
type DrawServiceInterface interface {
	Draw(ctx context.Context, userID, campaignID int32) (*model.Coupon, error)
}

// DrawHandler handles HTTP requests for the draw operation.
type DrawHandler struct {
	service   DrawServiceInterface
	validator *validator.Validate
}

// NewDrawHandler creates a new DrawHandler.
func NewDrawHandler(svc DrawServiceInterface, v *validator.Validate) *DrawHandler {
	return &DrawHandler{service: svc, validator: v}
}

// Draw handles POST /draw requests.
func (h *DrawHandler) Draw(c *fiber.Ctx) error {
	var req model.DrawRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	coupon, err := h.service.Draw(c.Context(), req.UserID, req.CampaignID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return notFound(c, "user doesn't exist")
		case errors.Is(err, service.ErrCampaignNotFound):
			return notFound(c, "campaign doesn't exist or has no coupon types")
		case errors.Is(err, service.ErrAlreadyDrawn):
			return conflict(c, "user has already drawn from this campaign. Come again tommorow")
		}
		log.Error().Err(err).Int32("user_id", req.UserID).Int32("campaign_id", req.CampaignID).
			Msg("failed to draw")
		return internalError(c)
	}

	return c.JSON(model.DrawResponse{MaybeCoupon: coupon})
}
