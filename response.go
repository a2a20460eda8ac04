package respond

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// DefaultStatus is the status code of a response whose handler never set one.
const DefaultStatus = http.StatusOK

// stagingThreshold is the staged-byte count at which buffered body bytes are
// handed to the transport. Large payloads stream through the same bounded
// buffer instead of accumulating.
const stagingThreshold = 4096

// Framing selects how the response body is delimited on the wire.
type Framing uint8

const (
	// FramingNone means no body is expected.
	FramingNone Framing = iota

	// FramingFixed means an explicit Content-Length was declared; the body
	// must deliver exactly that many bytes.
	FramingFixed

	// FramingChunked means the length was unknown at commit time.
	FramingChunked
)

func (f Framing) String() string {
	switch f {
	case FramingFixed:
		return "fixed-length"
	case FramingChunked:
		return "chunked"
	default:
		return "none"
	}
}

// Response is the per-request response pipeline: it owns the header table,
// the status code, the body framing and the two lifecycle hook chains, and
// drives the forward-only state machine that keeps them consistent.
//
// A Response is owned by one request's processing unit and is not safe for
// interleaved concurrent writes; body writes are sequential by contract. The
// hook chains tolerate racing triggers from the normal and the error path.
type Response struct {
	ctx  context.Context
	tr   Transport
	logs Logger

	state    State
	status   int
	snapshot int
	hdr      *Header

	framing  Framing
	declared int64
	written  int64

	staged  *bytebufferpool.ByteBuffer
	aborted *AbortError
	freed   bool

	starting  hookChain
	completed hookChain
}

// NewResponse inits a response writing to tr. Hooks run with ctx. A nil logs
// falls back to the standard library logger.
func NewResponse(ctx context.Context, tr Transport, logs Logger) *Response {
	if ctx == nil {
		ctx = context.Background()
	}

	if logs == nil {
		logs = NewStdLogger(log.Default())
	}

	r := &Response{
		ctx:    ctx,
		tr:     tr,
		logs:   logs,
		status: DefaultStatus,
		staged: bytebufferpool.Get(),
	}

	r.hdr = newHeader(r.mutable)
	r.starting.name = "on-starting"
	r.completed.name = "on-completed"

	return r
}

// State returns how far the response has progressed.
func (r *Response) State() State { return r.state }

// HeadersSent reports whether the status line and headers are frozen.
func (r *Response) HeadersSent() bool { return r.state >= StateHeadersCommitted }

// Header returns the response's header table. Mutations fail once headers
// are committed.
func (r *Response) Header() *Header { return r.hdr }

// Status returns the current status code.
func (r *Response) Status() int { return r.status }

// FinalStatus returns the status snapshot taken at the Completed transition.
// It reflects what was actually transmitted, including an exception-boundary
// override, and is only valid once the response completed.
func (r *Response) FinalStatus() (int, bool) {
	return r.snapshot, r.state == StateCompleted
}

// Framing returns the body framing decided so far.
func (r *Response) Framing() Framing { return r.framing }

// Aborted returns the transport abort, or nil for a healthy response.
func (r *Response) Aborted() error {
	if r.aborted == nil {
		return nil
	}

	return r.aborted
}

// SetStatus sets the status code. Only legal while headers are uncommitted.
func (r *Response) SetStatus(code int) error {
	if err := r.mutable("set status"); err != nil {
		return err
	}

	r.status = code

	return nil
}

// SetContentLength declares fixed-length framing: the body must deliver
// exactly n bytes. Only legal while headers are uncommitted.
func (r *Response) SetContentLength(n int64) error {
	if err := r.mutable("set content-length"); err != nil {
		return err
	}

	r.framing = FramingFixed
	r.declared = n

	return r.hdr.Set("Content-Length", String(strconv.FormatInt(n, 10)))
}

// OnStarting registers a hook that runs once, just before headers commit.
func (r *Response) OnStarting(h Hook) error {
	if r.freed {
		return ErrResponseFreed
	}

	return r.starting.register(h)
}

// OnCompleted registers a hook that runs once when the response finishes.
// The on-completed chain fires exactly once per request, even when the
// on-starting chain never ran.
func (r *Response) OnCompleted(h Hook) error {
	if r.freed {
		return ErrResponseFreed
	}

	return r.completed.register(h)
}

// Write appends p to the body. The first write commits headers: it fires the
// on-starting chain and transmits the status line, synchronously, before any
// body byte reaches the transport. Under fixed-length framing a write that
// would exceed the declared length fails before transmitting anything.
func (r *Response) Write(p []byte) (int, error) {
	switch {
	case r.freed:
		return 0, ErrResponseFreed
	case r.aborted != nil:
		return 0, r.aborted
	case r.state == StateCompleted:
		return 0, &InvalidStateError{Op: "write body", State: r.state}
	}

	if r.framing == FramingFixed && r.written+int64(len(p)) > r.declared {
		return 0, &FramingError{Declared: r.declared, Written: r.written + int64(len(p))}
	}

	if r.state == StateInitial {
		if r.framing == FramingNone {
			r.framing = FramingChunked
		}

		if err := r.commit(); err != nil {
			return 0, err
		}
	}

	r.staged.Write(p) //nolint:errcheck // bytebufferpool writes cannot fail
	r.written += int64(len(p))

	if r.staged.Len() >= stagingThreshold {
		if err := r.flushStaged(); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// FlushBody commits headers if needed and pushes all staged body bytes to
// the transport.
func (r *Response) FlushBody() error {
	switch {
	case r.freed:
		return ErrResponseFreed
	case r.aborted != nil:
		return r.aborted
	case r.state == StateCompleted:
		return &InvalidStateError{Op: "flush body", State: r.state}
	}

	if r.state == StateInitial {
		if r.framing == FramingNone {
			r.framing = FramingChunked
		}

		if err := r.commit(); err != nil {
			return err
		}
	}

	return r.flushStaged()
}

// FlushHeaders commits a header-only response. Used when a handler finishes
// without writing a body, so the on-completed chain always gets a paired
// header commit opportunity. A no-op once headers are already committed.
func (r *Response) FlushHeaders() error {
	if r.freed {
		return ErrResponseFreed
	}

	if r.state != StateInitial {
		return nil
	}

	return r.commit()
}

// Complete finishes the response: commits headers if they never were,
// flushes staged bytes, verifies the fixed-length contract, snapshots the
// status for teardown and fires the on-completed chain exactly once.
// Completing short of a declared content-length aborts the transport: the
// committed headers claimed a length the body did not deliver, so a normal
// ending would be a lie on the wire. Idempotent after the first call.
func (r *Response) Complete() error {
	if r.freed {
		return ErrResponseFreed
	}

	if r.state == StateCompleted {
		return nil
	}

	var ferr error
	if r.state == StateInitial {
		ferr = r.commit()
	}

	if err := r.flushStaged(); err != nil && ferr == nil {
		ferr = err
	}

	if r.framing == FramingFixed && r.written != r.declared && r.aborted == nil && ferr == nil {
		ferr = r.abort(&FramingError{Declared: r.declared, Written: r.written})
	}

	r.state = StateCompleted
	r.snapshot = r.status

	if err := r.completed.run(r.ctx); err != nil {
		r.logs.LogHookFailure(err)
	}

	return ferr
}

// Free returns the staging buffer to its pool. The response is dead
// afterwards; all operations fail with ErrResponseFreed. Idempotent.
func (r *Response) Free() {
	if r.freed {
		return
	}

	r.freed = true
	bytebufferpool.Put(r.staged)
	r.staged = nil
}

// commit freezes status and headers: the on-starting chain runs first, while
// headers are still mutable, then the state advances and the transport gets
// the status line. Callers ensure state is Initial.
func (r *Response) commit() error {
	if err := r.starting.run(r.ctx); err != nil {
		r.logs.LogHookFailure(err)
	}

	r.state = StateHeadersCommitted

	if r.aborted != nil {
		return r.aborted
	}

	if err := r.tr.Transmit(r.status, r.hdr); err != nil {
		return r.abort(err)
	}

	return nil
}

// flushStaged hands staged bytes to the transport, preserving order.
func (r *Response) flushStaged() error {
	if r.aborted != nil {
		return r.aborted
	}

	if r.staged.Len() == 0 {
		return nil
	}

	if err := r.tr.TransmitBody(r.staged.B); err != nil {
		return r.abort(err)
	}

	r.staged.Reset()

	return nil
}

// abort records a terminal transport failure and surfaces it to the
// transport collaborator. Later writes fail with the same abort.
func (r *Response) abort(reason error) *AbortError {
	if r.aborted == nil {
		r.aborted = &AbortError{Reason: reason}
		r.logs.LogAbort(reason)
		r.tr.Abort(reason)
	}

	return r.aborted
}

// reject discards everything assembled so far and rigs a minimal header-only
// failure response. The on-starting chain is disarmed: a handler that failed
// before its first write never gets those hooks, while on-completed still
// fires at completion. Used by the exception boundary; only legal while the
// state is still Initial.
func (r *Response) reject(status int) {
	r.hdr.reset()
	r.status = status
	r.framing = FramingNone
	r.declared = 0
	r.written = 0
	r.staged.Reset()
	r.starting.disarm()
}

// mutable is the header/status mutation guard: everything is frozen once the
// response leaves the Initial state.
func (r *Response) mutable(op string) error {
	if r.freed {
		return ErrResponseFreed
	}

	if r.state != StateInitial {
		return &InvalidStateError{Op: op, State: r.state}
	}

	return nil
}
