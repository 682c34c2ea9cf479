package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/models"
	"github.com/rakapradana/mebelio/internal/utils/response"
)

type contextKey uuid.UUID

var (
	UserContextKey    = contextKey(uuid.New())
	SessionContextKey = contextKey(uuid.New())
)

// SessionHeader carries the opaque guest session token. Guests get cart
// access through it without an account.
const SessionHeader = "X-Session-ID"

type AuthMiddleware struct {
	jwtKey []byte
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey}
}

func (m *AuthMiddleware) parseToken(r *http.Request, logger *slog.Logger) (*models.Claims, *errors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.UnauthorizedError("Authorization header is required")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		logger.Warn("Invalid authorization header format")

		return nil, errors.UnauthorizedError("Invalid authorization format")
	}

	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			logger.Error("Unexpected signing method used in JWT", slog.Any("alg", t.Header["alg"]))

			return nil, errors.BadRequestError("unexpected signing method")
		}

		return m.jwtKey, nil
	})
	if err != nil {
		logger.Warn("JWT parsing failed", slog.String("error", err.Error()))

		return nil, errors.UnauthorizedError("Invalid or expired token")
	}

	if !token.Valid {
		return nil, errors.UnauthorizedError("Invalid token")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		logger.Warn("Expired token", slog.String("userId", claims.UserID.String()))

		return nil, errors.UnauthorizedError("Token expired")
	}

	return claims, nil
}

// Authenticate requires a valid bearer token and stores the claims plus a
// user-scoped logger in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		claims, appErr := m.parseToken(r, logger)
		if appErr != nil {
			response.Error(w, appErr)

			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)

		requestScopedLogger := logger.With(slog.String("userId", claims.UserID.String()))
		ctx = context.WithValue(ctx, loggerKey, requestScopedLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireAdmin gates the admin surface. Stacks on top of Authenticate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.HandlerFunc {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin() {
			LoggerFromContext(r.Context()).Warn("Non-admin attempted admin operation")
			response.Error(w, errors.ForbiddenError("Admin access required"))

			return
		}

		next.ServeHTTP(w, r)
	}))
}

// Identify resolves the cart owner: a bearer token when present, otherwise
// the guest session header. Requests carrying neither are rejected, since
// every cart operation needs an owner.
func (m *AuthMiddleware) Identify(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		if r.Header.Get("Authorization") != "" {
			claims, appErr := m.parseToken(r, logger)
			if appErr != nil {
				response.Error(w, appErr)

				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			ctx = context.WithValue(ctx, loggerKey, logger.With(slog.String("userId", claims.UserID.String())))

			next.ServeHTTP(w, r.WithContext(ctx))

			return
		}

		sessionID := r.Header.Get(SessionHeader)
		if len(sessionID) < 8 || len(sessionID) > 128 {
			logger.Warn("Request with neither credentials nor a usable session id")
			response.Error(w, errors.UnauthorizedError("A bearer token or session id is required"))

			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, sessionID)
		ctx = context.WithValue(ctx, loggerKey, logger.With(slog.String("sessionId", sessionID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)

	return claims, ok
}

func SessionFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionContextKey).(string)

	return sessionID, ok
}

// CartOwnerFromContext builds the owner identity the cart layer keys on.
func CartOwnerFromContext(ctx context.Context) (models.CartOwner, bool) {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return models.OwnerForUser(claims.UserID), true
	}

	if sessionID, ok := SessionFromContext(ctx); ok {
		return models.OwnerForSession(sessionID), true
	}

	return models.CartOwner{}, false
}
