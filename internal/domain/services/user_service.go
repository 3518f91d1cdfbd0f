package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

const (
	// ProfileEndpoint reads and updates the signed-in user's profile
	ProfileEndpoint = "api/user/profile/"

	// ChangePasswordEndpoint changes the signed-in user's password
	ChangePasswordEndpoint = "api/user/change-password/"
)

// ErrAdminRequired is returned when a signed-in user without the admin role asks for admin data
var ErrAdminRequired = errors.New("admin role required")

// UserService manages the signed-in user's account
type UserService struct {
	api *client.Client
}

// NewUserService creates a new user service
func NewUserService(api *client.Client) *UserService {
	return &UserService{api: api}
}

// Profile fetches the signed-in user's profile
func (s *UserService) Profile(ctx context.Context) (*entities.User, error) {
	user, err := client.Get[entities.User](ctx, s.api, ProfileEndpoint, client.RequestOptions{RequiresAuth: true})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RequireAdmin fetches the profile and fails with ErrAdminRequired unless the user is an admin
func (s *UserService) RequireAdmin(ctx context.Context) (*entities.User, error) {
	user, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrAdminRequired
	}
	return user, nil
}

// UpdateProfile changes the given profile fields and returns the updated profile
func (s *UserService) UpdateProfile(ctx context.Context, upd entities.ProfileUpdate) (*entities.User, entities.Result) {
	if err := ValidateProfileUpdate(upd); err != nil {
		return nil, ResultFromError(err, "Failed to update profile")
	}

	user, err := client.Patch[entities.User](ctx, s.api, ProfileEndpoint, upd, client.RequestOptions{RequiresAuth: true})
	if err != nil {
		return nil, ResultFromError(err, "Failed to update profile")
	}
	return &user, entities.Succeeded("Profile updated successfully")
}

// ChangePassword changes the signed-in user's password
func (s *UserService) ChangePassword(ctx context.Context, pc entities.PasswordChange) entities.Result {
	if err := ValidatePasswordChange(pc); err != nil {
		return ResultFromError(err, "Failed to change password")
	}

	if _, err := client.Post[json.RawMessage](ctx, s.api, ChangePasswordEndpoint, pc, client.RequestOptions{RequiresAuth: true}); err != nil {
		return ResultFromError(err, "Failed to change password")
	}
	return entities.Succeeded("Password changed successfully")
}
