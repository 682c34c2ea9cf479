// Package testutils builds http requests pre-wired with the context values
// the middleware chain would normally install, so handler tests can exercise
// handlers directly.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/api/middleware"
	"github.com/rakapradana/mebelio/internal/models"
)

// CreateTestRequestWithContext returns a request carrying authenticated user
// claims, as if it had passed through Authenticate.
func CreateTestRequestWithContext(method, target string, body io.Reader, userID uuid.UUID, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	claims := &models.Claims{UserID: userID, Email: "test@example.com"}

	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	ctx = middleware.WithLogger(ctx, discardLogger())

	return req.WithContext(ctx)
}

// CreateTestRequestWithSession returns a request carrying a guest session
// token, as if it had passed through Identify without credentials.
func CreateTestRequestWithSession(method, target string, body io.Reader, sessionID string, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	ctx := context.WithValue(req.Context(), middleware.SessionContextKey, sessionID)
	ctx = middleware.WithLogger(ctx, discardLogger())

	return req.WithContext(ctx)
}

// CreateTestRequestWithoutContext returns a request with only a logger in
// context, for exercising the unauthorized paths.
func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	return req.WithContext(middleware.WithLogger(req.Context(), discardLogger()))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
