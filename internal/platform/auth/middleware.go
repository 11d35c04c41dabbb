package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/apperr"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	claimsKey   contextKey = "claims"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Identity is the verified caller attached to the request context.
type Identity struct {
	UserID int64
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Authenticated reports whether the identity came from a verified token.
func (i Identity) Authenticated() bool { return i.UserID > 0 }

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Identity converts verified claims into an Identity.
func (c *Claims) Identity() (Identity, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Identity{}, jwt.ErrTokenInvalidSubject
	}
	return Identity{UserID: id, Role: c.Role}, nil
}

type JWTConfig struct {
	SigningKey []byte
	Issuer     string
	// Revocations is consulted for the token ID when set.
	Revocations RevocationStore
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(tokenStr string, cfg JWTConfig) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return cfg.SigningKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// JWTMiddleware rejects requests without a valid bearer token and attaches
// the caller's Identity to the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return apperr.HTTP(apperr.Unauthorized("missing authorization header"), "")
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				return apperr.HTTP(apperr.Unauthorized("invalid authorization format"), "")
			}

			claims, err := ParseToken(strings.TrimSpace(tokenStr), cfg)
			if err != nil {
				return apperr.HTTP(apperr.Wrap(apperr.KindUnauthorized, "invalid token", err), "")
			}

			identity, err := claims.Identity()
			if err != nil {
				return apperr.HTTP(apperr.Wrap(apperr.KindUnauthorized, "invalid token", err), "")
			}

			ctx := c.Request().Context()
			if cfg.Revocations != nil && claims.ID != "" {
				revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					return apperr.HTTP(apperr.Storage("authentication temporarily unavailable", err), "")
				}
				if revoked {
					return apperr.HTTP(apperr.Unauthorized("token has been revoked"), "")
				}
			}

			ctx = WithIdentity(ctx, identity)
			ctx = context.WithValue(ctx, claimsKey, claims)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// WithIdentity returns a context carrying id. Handlers and tests use it to
// stand in for JWTMiddleware.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller, or the zero Identity for
// anonymous requests.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}
