package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/services"
	"github.com/google/uuid"
)

var ErrNoClaims = errors.New("user claims not found in context")

func GetClaimsFromContext(ctx context.Context) (*services.Claims, error) {
	claims, ok := ctx.Value(userContextKey).(*services.Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// GetActorFromContext returns the authenticated user as a services.Actor.
func GetActorFromContext(ctx context.Context) (services.Actor, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return services.Actor{}, err
	}
	return claims.Actor(), nil
}
