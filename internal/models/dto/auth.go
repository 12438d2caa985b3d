package dto

import "github.com/hongminglow/refer-web/internal/models"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ReferredBy string `json:"referredBy,omitempty"`
}

// TokenResponse is the backend payload for login and signup.
type TokenResponse struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UpdateUserPayload is what the backend update endpoint accepts. Password
// fields stay empty unless the password is being changed.
type UpdateUserPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	CurrentPassword string `json:"currentPassword"`
}

type UserEnvelope struct {
	User models.User `json:"user"`
}

type PurchaseRequest struct {
	ReferredBy       string `json:"referredBy"`
	PurchasedReferID string `json:"purchasedReferId"`
}
