// Package respond implements the response side of an HTTP server: it turns
// application-level writes (status, headers, body bytes) into a correctly
// framed response on the wire, with lifecycle hooks that run at well-defined
// points even when the handler fails.
//
// # Overview
//
// The package is built around a per-request [Response] object that owns an
// ordered header table, a status code, the body framing and two hook chains.
// A forward-only state machine (Initial -> HeadersCommitted -> Completed)
// keeps those pieces consistent: once headers commit they are immutable, and
// the final status observed at teardown is always the one that was actually
// transmitted.
//
// A minimal example:
//
//	mux := respond.NewServeMux()
//	mux.HandleFunc("GET /items/{id}", func(ctx context.Context, w *respond.Response, r *http.Request) error {
//	    item, err := db.GetItem(r.PathValue("id"))
//	    if err != nil {
//	        return respond.NewError(http.StatusNotFound, err)
//	    }
//	    w.Header().Set("Content-Type", respond.String("application/json"))
//	    return json.NewEncoder(w).Encode(item)
//	})
//
// # Handler signature
//
// Handlers receive a typed context as the first argument, write to a
// [*Response] and return an error. Returning an error (or panicking) is the
// only sanctioned way to signal unrecoverable per-request failure; the
// exception boundary in [Execute] takes it from there:
//
//   - failure before any header commit: partially-set headers and status are
//     discarded and a minimal header-only failure response is committed
//     (500, or the status of a [*Error] created with [NewError]);
//   - failure after headers committed: what was transmitted cannot change,
//     so the transport is told to abort the connection instead;
//   - in both cases the response is driven to Completed, which fires the
//     on-completed hook chain exactly once before teardown reads the status.
//
// # Header table
//
// [Header] keeps name insertion order and multi-values per name. Values are
// normalized at assignment time: an [Absent] value is dropped, and a header
// whose assignment normalizes to zero values is removed from the table
// entirely. An empty string, by contrast, is a legitimate value:
//
//	w.Header().Set("X-Trace", respond.Absent)              // not stored
//	w.Header().Set("X-Trace", respond.String(""))          // stored, value ""
//	w.Header().Set("X-Trace", respond.Absent, respond.String("a")) // stored, ["a"]
//
// Header and status mutations fail with [*InvalidStateError] once headers
// commit; reads are legal in every state.
//
// # Body framing
//
// Declaring a length with [Response.SetContentLength] selects fixed-length
// framing: the body must deliver exactly that many bytes, and a write that
// would exceed it fails with [*FramingError] before transmitting anything.
// Completing short of the declared length is also a [*FramingError] and
// aborts the transport, since the committed headers already claimed a length
// the body did not deliver. Writing without a declared length selects
// chunked framing with no length bound. Writes stream through a pooled
// staging buffer, so arbitrarily large payloads are built from many bounded
// writes, in order, byte-exact.
//
// # Lifecycle hooks
//
// [Response.OnStarting] hooks run once, synchronously, just before headers
// commit (they may still mutate headers). [Response.OnCompleted] hooks run
// exactly once when the response finishes, whether or not on-starting ever
// fired: a handler that fails before its first write still gets its cleanup
// hooks. Hooks run in registration order, a failing hook never stops its
// siblings or the other chain, and failures are reported to the [Logger].
//
// # Transport
//
// The connection layer is consumed through the [Transport] interface:
// Transmit once at header commit, TransmitBody per chunk, Abort on a
// mid-response failure. [ToStd] adapts the pipeline onto net/http and maps
// aborts to http.ErrAbortHandler so the connection terminates abnormally
// rather than ending with a response claiming a length it didn't deliver.
// The respondtest package ships a recording transport for tests.
//
// # ServeMux
//
// [ServeMux] combines the pieces into an http.Handler: [ServeMux.Use]
// registers middleware (before the first Handle), [ServeMux.Handle] and
// [ServeMux.HandleFunc] register routes, [ServeMux.HandleStd] adapts
// standard library handlers. The conversion chain for custom wiring is:
//
//	Handler[C] -> BareHandler -> http.Handler
//
// via [ToBare] (applies the context initializer) and [ToStd] (wraps with the
// exception boundary and teardown).
package respond
