package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	applogger "github.com/apavering/user-directory/app/logger"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDTracing propagates the chi request id into the response header,
// the request context, and a request-scoped zerolog logger.
func RequestIDTracing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetReqID(r.Context())
			if requestID == "" {
				requestID = strconv.FormatUint(middleware.NextRequestID(), 10)
			}

			w.Header().Set("X-Request-ID", requestID)

			log := applogger.Logger.With().Str("request_id", requestID).Logger()
			ctx := log.WithContext(r.Context())
			ctx = context.WithValue(ctx, requestIDKey, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the request id injected by RequestIDTracing,
// or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
