package webapp

import (
	"context"
	"net/http"
	"time"

	"github.com/corewire/respond"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type requestIDKey struct{}

// RequestID returns the request identifier set by the request-ID middleware,
// or "" when the middleware is not installed.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID assigns every request a fresh identifier, echoes it on the
// response and makes it available via [RequestID].
func withRequestID() respond.Middleware {
	return func(next respond.BareHandler) respond.BareHandler {
		return respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
			}

			if err := w.Header().Set("X-Request-Id", respond.String(id)); err != nil {
				return err
			}

			return next.ServeBare(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// withDefaultHeaders applies a JSON object of header name to value before
// the handler runs. Handlers can still override or remove individual
// entries; non-string values and invalid JSON are ignored.
func withDefaultHeaders(blob string) respond.Middleware {
	return func(next respond.BareHandler) respond.BareHandler {
		return respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
			if gjson.Valid(blob) {
				gjson.Parse(blob).ForEach(func(name, value gjson.Result) bool {
					if value.Type == gjson.String {
						_ = w.Header().Set(name.String(), respond.String(value.String()))
					}
					return true
				})
			}

			return next.ServeBare(w, r)
		})
	}
}

// withAccessLog logs one line per finished request from an on-completed
// hook, so the logged status is the committed one, also on error paths.
// Server errors log at error level, the rest at info.
func withAccessLog(logger *zap.Logger, healthPath string) respond.Middleware {
	logger = logger.Named("access")

	return func(next respond.BareHandler) respond.BareHandler {
		return respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
			if r.URL.Path == healthPath {
				return next.ServeBare(w, r)
			}

			start := time.Now()
			method, path := r.Method, r.URL.Path

			if err := w.OnCompleted(func(ctx context.Context) error {
				status, _ := w.FinalStatus()
				fields := []zap.Field{
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("status", status),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", RequestID(r.Context())),
				}

				if status >= http.StatusInternalServerError {
					logger.Error("request", fields...)
				} else {
					logger.Info("request", fields...)
				}

				return nil
			}); err != nil {
				return err
			}

			return next.ServeBare(w, r)
		})
	}
}
