package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/api/middleware"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/outbox"
)

// tenantFromRequest pulls the tenant seeded by the auth middleware.
func tenantFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.TenantIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant context missing")
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid tenant id")
	}
	return tenantID, nil
}

// actorFromRequest builds the event actor from the authenticated claims.
// Returns nil when no user context is present.
func actorFromRequest(r *http.Request) *outbox.ActorRef {
	ctx := r.Context()
	userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return nil
	}
	tenantID, err := uuid.Parse(middleware.TenantIDFromContext(ctx))
	if err != nil {
		return nil
	}
	actor := &outbox.ActorRef{
		UserID:   userID,
		TenantID: tenantID,
		Role:     middleware.RoleFromContext(ctx),
	}
	if locationID, err := uuid.Parse(middleware.LocationIDFromContext(ctx)); err == nil {
		actor.LocationID = &locationID
	}
	return actor
}
