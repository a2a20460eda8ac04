// Package respondtest provides test doubles for the response pipeline.
package respondtest

import (
	"bytes"
	"sync"

	"github.com/corewire/respond"
)

// RecordingTransport is an in-memory [respond.Transport] that records the
// committed status, an ordered header snapshot, the exact body byte stream
// and any abort reason. The zero value is ready to use.
type RecordingTransport struct {
	mu sync.Mutex

	transmitted bool
	status      int
	names       []string
	values      map[string][]string
	body        bytes.Buffer
	bodyCalls   int
	abortReason error

	// FailBodyWith, when set, makes every TransmitBody call fail with it,
	// simulating a dropped connection mid-write.
	FailBodyWith error
}

// NewRecordingTransport inits an empty recording transport.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{}
}

// Transmit implements [respond.Transport].
func (t *RecordingTransport) Transmit(status int, hdr *respond.Header) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.transmitted = true
	t.status = status
	t.names = hdr.Names()
	t.values = make(map[string][]string, len(t.names))
	for _, name := range t.names {
		t.values[name] = hdr.Values(name)
	}

	return nil
}

// TransmitBody implements [respond.Transport].
func (t *RecordingTransport) TransmitBody(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.FailBodyWith != nil {
		return t.FailBodyWith
	}

	t.bodyCalls++
	t.body.Write(p)

	return nil
}

// Abort implements [respond.Transport].
func (t *RecordingTransport) Abort(reason error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.abortReason == nil {
		t.abortReason = reason
	}
}

// Transmitted reports whether headers were committed to this transport.
func (t *RecordingTransport) Transmitted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.transmitted
}

// Status returns the committed status code.
func (t *RecordingTransport) Status() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.status
}

// HeaderNames returns the committed header names in insertion order.
func (t *RecordingTransport) HeaderNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.names...)
}

// HeaderValues returns the committed values for name.
func (t *RecordingTransport) HeaderValues(name string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.values[name]...)
}

// Body returns the received body byte stream.
func (t *RecordingTransport) Body() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]byte(nil), t.body.Bytes()...)
}

// BodyCalls returns the number of TransmitBody calls that succeeded.
func (t *RecordingTransport) BodyCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.bodyCalls
}

// AbortReason returns the first abort reason, or nil.
func (t *RecordingTransport) AbortReason() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.abortReason
}

var _ respond.Transport = &RecordingTransport{}
