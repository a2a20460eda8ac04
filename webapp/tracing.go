package webapp

import (
	"context"
	"net/http"

	"github.com/corewire/respond"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracerProvider is the default tracer provider: tracing is off until
// the embedding application supplies a real provider via fx.
func NewNoopTracerProvider() trace.TracerProvider {
	return noop.NewTracerProvider()
}

// withTracing opens a server span per request. The span ends from an
// on-completed hook so it always observes the final committed status, also
// when the handler failed before its first write. The health check path is
// excluded to avoid noisy probe traces.
func withTracing(tp trace.TracerProvider, service, healthPath string) respond.Middleware {
	tracer := tp.Tracer("github.com/corewire/respond/webapp")

	return func(next respond.BareHandler) respond.BareHandler {
		return respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
			if r.URL.Path == healthPath {
				return next.ServeBare(w, r)
			}

			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("service.name", service),
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				))

			if err := w.OnCompleted(func(context.Context) error {
				if status, ok := w.FinalStatus(); ok {
					span.SetAttributes(attribute.Int("http.response.status_code", status))
				}
				span.End()
				return nil
			}); err != nil {
				span.End()
				return err
			}

			err := next.ServeBare(w, r.WithContext(ctx))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}

			return err
		})
	}
}
