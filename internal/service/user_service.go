package service

import (
	"context"
	"fmt"

	"github.com/lumibyte/coupon-draw-service/internal/model"
)

// UserRepositoryInterface defines the interface for user data access.
type UserRepositoryInterface interface {
	Insert(ctx context.Context, phone string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int32) error
}

// UserService provides the minimal user-management operations the draw
// engine's existence check and the HTTP surface require: create, list,
// delete. No authentication and no profile fields beyond phone.
type UserService struct {
	userRepo UserRepositoryInterface
}

// NewUserService creates a new UserService.
func NewUserService(userRepo UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

// Create registers a new user. Returns ErrPhoneExists on a duplicate phone.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	user, err := s.userRepo.Insert(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes a user by id. Returns ErrUserNotFound if absent.
func (s *UserService) Delete(ctx context.Context, id int32) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
