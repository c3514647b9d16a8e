package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	logpkg "github.com/ravi-m-fleetenable/global-search/internal/logger"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Claims are the caller token claims.
type Claims struct {
	Role     string `json:"role"`
	DriverID string `json:"driver_id,omitempty"`
	jwt.StandardClaims
}

// AuthConfig configures CallerMiddleware.
type AuthConfig struct {
	// Secret is the HS256 signing key. Empty disables verification and every
	// request runs as Dev.
	Secret string
	Dev    caller.Context
}

// CallerMiddleware resolves the caller from a Bearer JWT and stores it in the
// request context.
func CallerMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Secret == "" {
				recordCaller(r.Context(), cfg.Dev)
				next.ServeHTTP(w, r.WithContext(logpkg.WithCaller(r.Context(), cfg.Dev)))
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					ErrorResponseCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			c, err := ParseToken(auth[len(bearerPrefix):], cfg.Secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid token")
				return
			}

			recordCaller(r.Context(), c)
			next.ServeHTTP(w, r.WithContext(logpkg.WithCaller(r.Context(), c)))
		})
	}
}

// ParseToken verifies an HS256 token and builds the caller from its claims.
func ParseToken(token, secret string) (caller.Context, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return caller.Context{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return caller.Context{}, fmt.Errorf("token has no subject")
	}
	r, err := role.Parse(claims.Role)
	if err != nil {
		return caller.Context{}, fmt.Errorf("token role: %w", err)
	}
	driverID := ""
	if r == role.Driver {
		driverID = claims.DriverID
	}
	return caller.New(claims.Subject, r, driverID), nil
}

// SignToken issues an HS256 token for c. Used by the CLI and tests.
func SignToken(c caller.Context, secret string, expiresAt int64) (string, error) {
	claims := Claims{
		Role:     string(c.Role()),
		DriverID: c.DriverID(),
		StandardClaims: jwt.StandardClaims{
			Subject:   c.UserID(),
			ExpiresAt: expiresAt,
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}
