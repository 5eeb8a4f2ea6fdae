package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/security"
)

const (
	HeaderName       = "Idempotency-Key"
	ReplayHeaderName = "X-Idempotent-Replay"
	maxKeyLength     = 255
)

// Middleware replays the stored response for a repeated Idempotency-Key on POST requests.
// Requests without the header pass through. Keys are scoped to the caller's tenant and user.
func Middleware(store Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(HeaderName))
			if r.Method != http.MethodPost || key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxKeyLength {
				writeError(w, http.StatusBadRequest, "idempotency key too long")
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "unable to read request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			scoped := scopedKey(r, key)
			fingerprint := Fingerprint(r.Method, r.URL.Path, body)

			reservation, err := store.Reserve(ctx, scoped, fingerprint, ttl)
			if errors.Is(err, ErrFingerprintMismatch) {
				writeError(w, http.StatusUnprocessableEntity, "idempotency key reused with a different request")
				return
			}
			if err != nil {
				logger.ErrorContext(ctx, "Idempotency reserve failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "idempotency store unavailable")
				return
			}

			switch reservation.State {
			case ReservationStateCompleted:
				logger.InfoContext(ctx, "Replaying idempotent response", "status", reservation.Record.ResponseStatus)
				if reservation.Record.ContentType != "" {
					w.Header().Set("Content-Type", reservation.Record.ContentType)
				}
				w.Header().Set(ReplayHeaderName, "true")
				w.WriteHeader(reservation.Record.ResponseStatus)
				w.Write(reservation.Record.ResponseBody)
				return
			case ReservationStatePending:
				writeError(w, http.StatusConflict, "a request with this idempotency key is in progress")
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			serveReleasingOnPanic(ctx, store, scoped, next, rec, r)

			if rec.status >= http.StatusInternalServerError {
				if err := store.Release(ctx, scoped); err != nil {
					logger.ErrorContext(ctx, "Idempotency release failed", "error", err)
				}
				return
			}
			record := reservation.Record
			record.ResponseStatus = rec.status
			record.ContentType = rec.Header().Get("Content-Type")
			record.ResponseBody = rec.body.Bytes()
			if err := store.Complete(ctx, scoped, record, ttl); err != nil {
				logger.ErrorContext(ctx, "Idempotency save failed", "error", err)
			}
		})
	}
}

// serveReleasingOnPanic frees the key when next panics so a retry is not stuck behind a
// pending reservation until the TTL expires. The panic is re-raised for outer recovery.
func serveReleasingOnPanic(ctx context.Context, store Store, key string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				logger.ErrorContext(ctx, "Idempotency release after panic failed", "error", err)
			}
			panic(rec)
		}
	}()
	next.ServeHTTP(w, r)
}

func scopedKey(r *http.Request, key string) string {
	p, _ := security.PrincipalFromContext(r.Context())
	return fmt.Sprintf("%d:%d:%s:%s", p.TenantID, p.UserID, r.URL.Path, key)
}

// recorder passes the response through while keeping a copy of it.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
