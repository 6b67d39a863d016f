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

// RedeemServiceInterface defines the interface for the redeem operation.
type RedeemServiceInterface interface {
	Redeem(ctx context.Context, couponID, userID int32) (*model.Coupon, error)
}

// RedeemHandler handles HTTP requests for coupon redemption.
type RedeemHandler struct {
	service   RedeemServiceInterface
	validator *validator.Validate
}

// NewRedeemHandler creates a new RedeemHandler.
func NewRedeemHandler(svc RedeemServiceInterface, v *validator.Validate) *RedeemHandler {
	return &RedeemHandler{service: svc, validator: v}
}

// Redeem handles POST /redeem requests.
func (h *RedeemHandler) Redeem(c *fiber.Ctx) error {
	var req model.RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	coupon, err := h.service.Redeem(c.Context(), req.CouponID, req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRedeemed) {
			return conflict(c, "coupon not found or already redeemed")
		}
		log.Error().Err(err).Int32("coupon_id", req.CouponID).Msg("failed to redeem coupon")
		return internalError(c)
	}

	return c.JSON(coupon)
}
