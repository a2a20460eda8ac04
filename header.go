package respond

import (
	"net/textproto"
	"slices"

	"github.com/samber/lo"
)

// Value is a header value that may be absent. An absent value is dropped at
// assignment time; an empty string is a legitimate value and is kept. The
// distinction matters: assigning only absent values removes the header from
// the table entirely.
type Value struct {
	s  string
	ok bool
}

// Absent is the header value that carries no value at all.
var Absent = Value{}

// String makes a present header value, possibly the empty string.
func String(s string) Value {
	return Value{s: s, ok: true}
}

// Present reports whether the value carries a string.
func (v Value) Present() bool { return v.ok }

// Get returns the carried string, or "" when absent.
func (v Value) Get() string { return v.s }

// normalizeValues keeps present values in assignment order. Absent values
// are dropped; empty strings survive.
func normalizeValues(vals []Value) []string {
	return lo.FilterMap(vals, func(v Value, _ int) (string, bool) {
		return v.s, v.ok
	})
}

// Header is an ordered multi-value header table. Name identity is
// case-insensitive (canonical MIME form); names keep insertion order. A
// header whose assignment normalizes to zero values is not stored at all.
//
// Mutations are guarded by the owning response's state: once headers commit,
// Set and Del fail with [*InvalidStateError]. Reads are legal in any state.
type Header struct {
	names  []string
	values map[string][]string
	guard  func(op string) error
}

// NewHeader makes a free-standing header table with no state guard.
func NewHeader() *Header {
	return newHeader(nil)
}

func newHeader(guard func(op string) error) *Header {
	return &Header{values: make(map[string][]string), guard: guard}
}

// Set replaces all values for name with the present values among vals. When
// none remain the header is removed from the table.
func (h *Header) Set(name string, vals ...Value) error {
	if err := h.mutable("set header"); err != nil {
		return err
	}

	canon := textproto.CanonicalMIMEHeaderKey(name)

	kept := normalizeValues(vals)
	if len(kept) == 0 {
		h.remove(canon)
		return nil
	}

	if _, exists := h.values[canon]; !exists {
		h.names = append(h.names, canon)
	}

	h.values[canon] = kept

	return nil
}

// SetStrings is Set with all values present.
func (h *Header) SetStrings(name string, vals ...string) error {
	return h.Set(name, lo.Map(vals, func(s string, _ int) Value {
		return String(s)
	})...)
}

// Del removes name from the table.
func (h *Header) Del(name string) error {
	if err := h.mutable("delete header"); err != nil {
		return err
	}

	h.remove(textproto.CanonicalMIMEHeaderKey(name))

	return nil
}

// Contains reports whether name has at least one effective value.
func (h *Header) Contains(name string) bool {
	_, ok := h.values[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// Get returns the first value for name, or "" when absent.
func (h *Header) Get(name string) string {
	vals := h.values[textproto.CanonicalMIMEHeaderKey(name)]
	if len(vals) == 0 {
		return ""
	}

	return vals[0]
}

// Values returns a copy of all values for name in assignment order.
func (h *Header) Values(name string) []string {
	return slices.Clone(h.values[textproto.CanonicalMIMEHeaderKey(name)])
}

// Names returns the header names in insertion order.
func (h *Header) Names() []string {
	return slices.Clone(h.names)
}

// Len returns the number of headers present.
func (h *Header) Len() int { return len(h.names) }

// Clone returns an unguarded deep copy, useful for snapshots.
func (h *Header) Clone() *Header {
	c := NewHeader()
	c.names = slices.Clone(h.names)
	for name, vals := range h.values {
		c.values[name] = slices.Clone(vals)
	}

	return c
}

// reset drops all entries but keeps the guard. Used by the exception
// boundary to discard partially-set headers before rendering a failure.
func (h *Header) reset() {
	h.names = h.names[:0]
	clear(h.values)
}

func (h *Header) remove(canon string) {
	if _, exists := h.values[canon]; !exists {
		return
	}

	delete(h.values, canon)
	h.names = slices.DeleteFunc(h.names, func(n string) bool { return n == canon })
}

func (h *Header) mutable(op string) error {
	if h.guard == nil {
		return nil
	}

	return h.guard(op)
}
