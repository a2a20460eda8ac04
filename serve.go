package respond

import (
	"context"
	"fmt"
	"net/http"
)

// Context constraint for "leaf" handlers.
type Context interface{ context.Context }

// Handler mirrors http.Handler but writes through the response pipeline and
// signals unrecoverable per-request failure by returning an error.
type Handler[C Context] interface {
	ServeRespond(ctx C, w *Response, r *http.Request) error
}

// HandlerFunc allows casting a function to implement [Handler].
type HandlerFunc[C Context] func(C, *Response, *http.Request) error

// ServeRespond implements the [Handler] interface.
func (f HandlerFunc[C]) ServeRespond(ctx C, w *Response, r *http.Request) error {
	return f(ctx, w, r)
}

// BareHandler is the middleware-level handler shape, without the typed
// context (middleware runs before context initialization).
type BareHandler interface {
	ServeBare(w *Response, r *http.Request) error
}

// BareHandlerFunc allows casting a function to implement [BareHandler].
type BareHandlerFunc func(*Response, *http.Request) error

// ServeBare implements the [BareHandler] interface.
func (f BareHandlerFunc) ServeBare(w *Response, r *http.Request) error {
	return f(w, r)
}

// ContextInitFunc describes functions that turn requests into a typed
// context for "leaf" handlers.
type ContextInitFunc[C Context] func(*http.Request) (C, error)

// StdContextInit initializes a plain context.Context from the request.
func StdContextInit(r *http.Request) (context.Context, error) {
	return r.Context(), nil
}

// ToBare converts a typed context handler 'h' into a bare handler.
func ToBare[C Context](h Handler[C], contextInit ContextInitFunc[C]) BareHandler {
	return BareHandlerFunc(func(w *Response, r *http.Request) error {
		ctx, err := contextInit(r)
		if err != nil {
			return fmt.Errorf("init typed context from standard request context: %w", err)
		}

		return h.ServeRespond(ctx, w, r)
	})
}

// Execute is the exception boundary: it runs the handler and, whatever
// happens, drives the response to Completed so the on-completed chain fires
// exactly once before teardown reads the final status.
//
// A failure while the state is still Initial discards partially-set headers
// and status and commits a minimal header-only failure response (500, or the
// status of a [*Error]). A failure after headers committed cannot change
// what was transmitted; the transport is told to abort instead. The handler
// failure, if any, is returned for the caller's logging.
func Execute(h BareHandler, w *Response, r *http.Request) error {
	err := serveRecovering(h, w, r)
	if err != nil {
		w.logs.LogHandlerFailure(err)

		if w.State() == StateInitial {
			status := StatusOf(err)
			if status == 0 {
				status = http.StatusInternalServerError
			}

			w.reject(status)

			// a transmit failure here is already reported by abort.
			_ = w.FlushHeaders()
		} else {
			w.abort(err)
		}
	}

	if cerr := w.Complete(); cerr != nil && err == nil {
		err = cerr
		w.logs.LogHandlerFailure(cerr)
	}

	// teardown: the snapshot taken at the Completed transition is what
	// actually went out on the wire.
	if status, ok := w.FinalStatus(); ok {
		w.logs.LogFinalStatus(status)
	}

	return err
}

// serveRecovering invokes the handler, converting a panic into a returned
// failure so the boundary treats both signaling styles the same.
func serveRecovering(h BareHandler, w *Response, r *http.Request) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("handler panic: %v", v)
		}
	}()

	return h.ServeBare(w, r)
}

// ToStd converts a bare handler into a standard library http.Handler. The
// implementation creates the per-request response pipeline over the
// net/http connection, runs the exception boundary and frees the response
// when the request's processing unit is done. A mid-response abort is
// re-raised as http.ErrAbortHandler after teardown, which makes net/http
// drop the connection without a fabricated valid ending.
func ToStd(h BareHandler, logs Logger) http.Handler {
	return http.HandlerFunc(func(hw http.ResponseWriter, req *http.Request) {
		tr := &httpTransport{w: hw}
		w := NewResponse(req.Context(), tr, logs)
		defer w.Free()

		_ = Execute(h, w, req)

		if reason := tr.abortReason(); reason != nil {
			panic(http.ErrAbortHandler)
		}
	})
}
