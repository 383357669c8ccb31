package auth

import (
	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/internal/users"
	"github.com/novapos/novapos-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint. Tenant
// scoping comes with the request because emails are only unique per tenant.
type LoginRequest struct {
	TenantID uuid.UUID `json:"tenant_id" validate:"required"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and the authenticated user.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest rotates an access/refresh pair.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegisterRequest creates an operator account inside a tenant.
type RegisterRequest struct {
	TenantID uuid.UUID        `json:"tenant_id" validate:"required"`
	Email    string           `json:"email" validate:"required,email"`
	Password string           `json:"password" validate:"required,min=8"`
	Role     enums.MemberRole `json:"role" validate:"required"`
}
