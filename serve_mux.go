package respond

import (
	"context"
	"log"
	"net/http"
)

// ServeMux is an HTTP multiplexer whose handlers run inside the response
// pipeline: exception boundary, lifecycle hooks and framing checks included.
type ServeMux struct {
	logs        Logger
	mux         *http.ServeMux
	middlewares struct {
		captured bool
		buffered []Middleware
	}
}

// NewServeMux creates a new ServeMux with default settings.
func NewServeMux() *ServeMux {
	return NewServeMuxWith(NewStdLogger(log.Default()), http.NewServeMux())
}

// NewServeMuxWith creates a ServeMux with custom settings.
func NewServeMuxWith(logger Logger, baseMux *http.ServeMux) *ServeMux {
	return &ServeMux{
		logs: logger,
		mux:  baseMux,
	}
}

// Use allows providing of middleware.
func (m *ServeMux) Use(mw ...Middleware) {
	m.ensureNoUseAfterHandle()
	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// HandleFunc handles the request given the pattern using a function.
func (m *ServeMux) HandleFunc(pattern string, handler HandlerFunc[context.Context]) {
	m.Handle(pattern, handler)
}

// HandleStd registers a standard library [http.Handler] for the given
// pattern. The handler writes through the pipeline's response object, so
// header commits and lifecycle hooks behave the same as for native handlers.
func (m *ServeMux) HandleStd(pattern string, handler http.Handler) {
	m.Handle(pattern, HandlerFunc[context.Context](func(_ context.Context, w *Response, r *http.Request) error {
		sw := newStdWriter(w)
		handler.ServeHTTP(sw, r)

		// stdlib handlers may set headers without ever writing; sync
		// them before the implicit header-only commit.
		if !w.HeadersSent() {
			sw.sync()
		}

		return nil
	}))
}

// Handle handles the request given a handler.
func (m *ServeMux) Handle(pattern string, handler Handler[context.Context]) {
	m.handle(pattern, ToStd(
		Wrap(ToBare(handler, StdContextInit), m.middlewares.buffered...),
		m.logs,
	))
}

// HandleBare handles the request given a bare handler, skipping context init.
func (m *ServeMux) HandleBare(pattern string, handler BareHandler) {
	m.handle(pattern, ToStd(
		Wrap(handler, m.middlewares.buffered...),
		m.logs,
	))
}

// ServeHTTP makes the serve mux implement the http.Handler interface.
func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

func (m *ServeMux) handle(pattern string, handler http.Handler) {
	m.middlewares.captured = true
	m.mux.Handle(pattern, handler)
}

func (m *ServeMux) ensureNoUseAfterHandle() {
	if m.middlewares.captured {
		panic("respond: cannot call Use() after calling Handle")
	}
}

// stdWriter exposes a pipeline response as an http.ResponseWriter for
// standard library handlers. The stdlib contract hands out a mutable header
// map, so the map is synced into the guarded table right before commit.
type stdWriter struct {
	w   *Response
	hdr http.Header
}

func newStdWriter(w *Response) *stdWriter {
	return &stdWriter{w: w, hdr: make(http.Header)}
}

func (s *stdWriter) Header() http.Header { return s.hdr }

func (s *stdWriter) WriteHeader(status int) {
	if s.w.HeadersSent() {
		return
	}

	s.sync()

	if err := s.w.SetStatus(status); err != nil {
		s.w.logs.LogHandlerFailure(err)
		return
	}

	if err := s.w.FlushHeaders(); err != nil {
		s.w.logs.LogHandlerFailure(err)
	}
}

func (s *stdWriter) Write(p []byte) (int, error) {
	if !s.w.HeadersSent() {
		s.sync()
	}

	return s.w.Write(p)
}

func (s *stdWriter) sync() {
	for name, vals := range s.hdr {
		if err := s.w.Header().SetStrings(name, vals...); err != nil {
			s.w.logs.LogHandlerFailure(err)
		}
	}
}
