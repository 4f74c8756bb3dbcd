// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/hpnchanel/usersvc/internal/model"
	"github.com/hpnchanel/usersvc/internal/service"
)

// CreateUserRequest represents the request body for creating a user.
// Username is a pointer so a missing key can be told apart from "".
type CreateUserRequest struct {
	Username  *string                `json:"username" validate:"required"`
	Email     model.Optional[string] `json:"email"`
	FirstName model.Optional[string] `json:"first_name"`
	LastName  model.Optional[string] `json:"last_name"`
	Bio       model.Optional[string] `json:"bio"`
	AvatarURL model.Optional[string] `json:"avatar_url"`
}

// ToInput converts the request to service input. Call after validation.
func (r *CreateUserRequest) ToInput() service.CreateUserInput {
	return service.CreateUserInput{
		Username:  *r.Username,
		Email:     r.Email.Ptr(),
		FirstName: r.FirstName.Ptr(),
		LastName:  r.LastName.Ptr(),
		Bio:       r.Bio.Ptr(),
		AvatarURL: r.AvatarURL.Ptr(),
	}
}

// UpdateUserRequest represents the request body for updating a user.
// Absent fields leave the stored value unchanged.
type UpdateUserRequest struct {
	Username  model.Optional[string] `json:"username"`
	Email     model.Optional[string] `json:"email"`
	FirstName model.Optional[string] `json:"first_name"`
	LastName  model.Optional[string] `json:"last_name"`
	Bio       model.Optional[string] `json:"bio"`
	AvatarURL model.Optional[string] `json:"avatar_url"`
	IsActive  model.Optional[bool]   `json:"is_active"`
}

// ToInput converts the request to service input.
func (r *UpdateUserRequest) ToInput() service.UpdateUserInput {
	return service.UpdateUserInput{
		Username:  r.Username.Ptr(),
		Email:     r.Email.Ptr(),
		FirstName: r.FirstName.Ptr(),
		LastName:  r.LastName.Ptr(),
		Bio:       r.Bio.Ptr(),
		AvatarURL: r.AvatarURL.Ptr(),
		IsActive:  r.IsActive.Ptr(),
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	FullName  *string   `json:"full_name"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts users to a JSON array body. Never nil.
func ToUserListResponse(users []*model.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = *ToUserResponse(user)
	}
	return responses
}
