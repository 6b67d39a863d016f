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

// UserServiceInterface defines the interface for user management.
type UserServiceInterface interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int32) error
}

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service   UserServiceInterface
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserServiceInterface, v *validator.Validate) *UserHandler {
	return &UserHandler{service: svc, validator: v}
}

// CreateUser handles POST /user requests.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req model.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	user, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrPhoneExists) {
			return conflict(c, "phone number "+req.Phone+" is registered by another user")
		}
		log.Error().Err(err).Msg("failed to create user")
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// ListUsers handles GET /user requests.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return internalError(c)
	}
	return c.JSON(users)
}

// DeleteUser handles DELETE /user/:id requests.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid request: id must be a number")
	}

	if err := h.service.Delete(c.Context(), int32(id)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return notFound(c, "user with this id doesn't exist")
		}
		log.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return internalError(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
