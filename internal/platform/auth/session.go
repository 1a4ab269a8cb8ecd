package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRolesKey contextKey = "user_roles"
)

// SessionCookieName is the cookie the login handler sets and the middleware
// reads when no Authorization header is present.
const SessionCookieName = "session"

// SessionClaims is the payload of a session token. The session is two-state:
// no valid token means unauthenticated, a valid token binds user id + roles.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
}

// IssueToken signs an HS256 session token for the given user.
func IssueToken(userID int64, roles []string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Roles:  roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
func ParseToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

// SessionMiddleware authenticates requests from a bearer token or the
// session cookie and binds user id + roles into the request context.
// Paths accepted by skipper pass through unauthenticated.
func SessionMiddleware(secret []byte, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			tokenStr := extractToken(c)
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "sesión requerida")
			}

			claims, err := ParseToken(tokenStr, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "sesión inválida o expirada")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRolesKey, claims.Roles)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if header := c.Request().Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// UserIDFromContext returns the authenticated user id, or 0 when the
// request is unauthenticated.
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(UserIDKey).(int64)
	return id
}

// RolesFromContext returns the authenticated user's roles.
func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(UserRolesKey).([]string)
	return roles
}

// WithUser returns a context carrying the given identity. Meant for tests
// and internal calls that bypass the HTTP middleware.
func WithUser(ctx context.Context, userID int64, roles []string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserRolesKey, roles)
}
