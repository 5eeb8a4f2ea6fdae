package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/security"
)

const (
	requestIDHeader = "X-Request-ID"
	tenantHeader    = "X-Tenant-ID"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogging tags each request with a request ID and logs its outcome.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := logger.WithFields(r.Context(), "request_id", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.InfoContext(ctx, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// Recover turns a handler panic into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Handler panicked", "panic", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware validates the bearer token, checks the route's permission and resolves the
// tenant the request acts on.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeName := ""
		if route := mux.CurrentRoute(r); route != nil {
			routeName = route.GetName()
		}
		sec := config.GetEndpointSecurity(routeName)

		// Public endpoint - skip auth
		if sec.Level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "authorization token is not provided")
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid token: "+err.Error())
			return
		}

		principal := security.PrincipalFromClaims(claims)
		if !principal.HasPermission(sec.Permission) {
			logger.WarnContext(r.Context(), "Permission denied", "userID", principal.UserID, "route", routeName, "permission", sec.Permission)
			writeError(w, http.StatusForbidden, "forbidden", "missing permission "+sec.Permission)
			return
		}

		var requested int32
		if raw := r.Header.Get(tenantHeader); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 32)
			if err != nil || id <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_argument", "invalid "+tenantHeader+" header")
				return
			}
			requested = int32(id)
		}
		tenantID, err := principal.ResolveTenant(requested)
		if err != nil {
			writeError(w, http.StatusForbidden, "forbidden", "tenant not accessible")
			return
		}
		principal.TenantID = tenantID

		ctx := security.WithPrincipal(r.Context(), principal)
		ctx = logger.WithFields(ctx, "tenant_id", tenantID, "user_id", principal.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
