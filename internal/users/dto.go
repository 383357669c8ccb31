package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/pkg/db/models"
	"github.com/novapos/novapos-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID        uuid.UUID        `json:"id"`
	TenantID  uuid.UUID        `json:"tenant_id"`
	Email     string           `json:"email"`
	Role      enums.MemberRole `json:"role"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	TenantID     uuid.UUID
	Email        string
	PasswordHash string
	Role         enums.MemberRole
}

// ToModel converts the create payload into the persistence model. Emails are
// stored lowercased so the per-tenant unique index is case-insensitive.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		TenantID:     d.TenantID,
		Email:        strings.ToLower(strings.TrimSpace(d.Email)),
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		IsActive:     true,
	}
}

// FromModel maps a persisted user to its transport shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
