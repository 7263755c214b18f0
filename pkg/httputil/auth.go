package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/boothbase/boothbase-backend/pkg/account"
	"github.com/boothbase/boothbase-backend/pkg/actor"
	"github.com/boothbase/boothbase-backend/pkg/config"
	"github.com/boothbase/boothbase-backend/pkg/errors"
	"github.com/boothbase/boothbase-backend/pkg/permissions"
)

// Claims are the access-token claims issued by the identity service.
// This service only verifies tokens; it never issues them.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`

	// Account context - the subscribing company owning the dealer roster
	AccountID   string `json:"account_id"`
	AccountSlug string `json:"account_slug"`
}

const permissionsKey contextKey = "permissions"

// Auth verifies the bearer token and populates user + account context.
func Auth(cfg *config.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseBearer(r, cfg)
			if err != nil {
				Error(w, err)
				return
			}

			ctx := WithUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			ctx = account.WithAccount(ctx, claims.AccountID, claims.AccountSlug)
			ctx = actor.WithActor(ctx, &actor.Actor{
				ID:        claims.UserID,
				Name:      claims.Name,
				Email:     claims.Email,
				AccountID: claims.AccountID,
				RoleName:  claims.Role,
			})
			ctx = withPermissions(ctx, claims.Permissions)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on a permission string like "dealers.write".
// Must be mounted inside Auth.
func RequirePermission(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perms, _ := r.Context().Value(permissionsKey).([]string)
			if !permissions.HasPermission(perms, required) {
				Error(w, errors.Forbidden("missing permission: "+required))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(r *http.Request, cfg *config.JWTConfig) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.Unauthorized("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.Unauthorized("invalid authorization header")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrTokenInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}
	if !token.Valid {
		return nil, errors.TokenInvalid()
	}
	if claims.AccountID == "" {
		return nil, errors.Forbidden("token carries no account context")
	}

	return claims, nil
}

func withPermissions(ctx context.Context, perms []string) context.Context {
	return context.WithValue(ctx, permissionsKey, perms)
}
