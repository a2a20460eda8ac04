package respond

import (
	"net/http"
	"sync/atomic"
)

// Transport is the connection-level collaborator that receives the framed
// response. Implementations are per-request and are driven by exactly one
// response object: Transmit is called once when headers commit, TransmitBody
// for each body chunk after that, and Abort when a mid-response failure
// makes a valid ending impossible.
type Transport interface {
	Transmit(status int, hdr *Header) error
	TransmitBody(p []byte) error
	Abort(reason error)
}

// httpTransport adapts a net/http ResponseWriter as a Transport. Abort is
// deferred: the reason is recorded here and [ToStd] panics with
// http.ErrAbortHandler after teardown, so completion hooks still run before
// net/http tears the connection down.
type httpTransport struct {
	w       http.ResponseWriter
	aborted atomic.Pointer[AbortError]
}

// NewHTTPTransport adapts w as a [Transport].
func NewHTTPTransport(w http.ResponseWriter) Transport {
	return &httpTransport{w: w}
}

func (t *httpTransport) Transmit(status int, hdr *Header) error {
	dst := t.w.Header()
	for _, name := range hdr.Names() {
		dst[name] = hdr.Values(name)
	}

	t.w.WriteHeader(status)

	return nil
}

func (t *httpTransport) TransmitBody(p []byte) error {
	_, err := t.w.Write(p)
	return err
}

func (t *httpTransport) Abort(reason error) {
	t.aborted.CompareAndSwap(nil, &AbortError{Reason: reason})
}

// abortReason returns the recorded abort, or nil for a clean response.
func (t *httpTransport) abortReason() *AbortError {
	return t.aborted.Load()
}
