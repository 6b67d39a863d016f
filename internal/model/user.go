package model

// User identifies a participant who may draw coupons.
type User struct {
	ID    int32  `json:"id"`
	Phone string `json:"phone"`
}

// CreateUserRequest is the DTO for registering a new user.
type CreateUserRequest struct {
	Phone string `json:"phone" validate:"required,notblank,max=32"`
}
