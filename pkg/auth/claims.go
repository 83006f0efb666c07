package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Plan   enums.PlanType
}

// AccessTokenClaims represents the typed JWT accepted from clients.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Email  string         `json:"email,omitempty"`
	Plan   enums.PlanType `json:"plan,omitempty"`
	jwt.RegisteredClaims
}
