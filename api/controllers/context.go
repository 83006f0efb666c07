package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/api/middleware"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
)

// authedUserID resolves the authenticated user's id from the request context.
func authedUserID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id in token")
	}
	return userID, nil
}
