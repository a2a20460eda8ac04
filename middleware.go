package respond

// Middleware for cross-cutting concerns on the response pipeline.
type Middleware func(BareHandler) BareHandler

// Wrap wraps the inner handler h with middleware, in the order of the
// Gorilla and Chi routers: the first middleware is the outermost wrapping,
// the last one sits closest to the handler.
func Wrap(h BareHandler, m ...Middleware) BareHandler {
	if len(m) < 1 {
		return h
	}

	wrapped := h
	for i := len(m) - 1; i >= 0; i-- {
		wrapped = m[i](wrapped)
	}

	return wrapped
}
