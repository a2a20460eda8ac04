package respond_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/corewire/respond"
	"github.com/corewire/respond/respondtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, logs *respond.TestLogger, h respond.BareHandlerFunc) (*respondtest.RecordingTransport, *respond.Response, error) {
	t.Helper()

	tr := respondtest.NewRecordingTransport()
	w := respond.NewResponse(context.Background(), tr, logs)
	t.Cleanup(w.Free)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := respond.Execute(h, w, req)

	return tr, w, err
}

func TestFailureBeforeAnyWrite(t *testing.T) {
	logs := respond.NewTestLogger(t)

	var startingRan, completedRan bool
	tr, w, err := execute(t, logs, func(w *respond.Response, r *http.Request) error {
		require.NoError(t, w.OnStarting(func(context.Context) error {
			startingRan = true
			return nil
		}))
		require.NoError(t, w.OnCompleted(func(context.Context) error {
			completedRan = true
			return nil
		}))

		require.NoError(t, w.SetStatus(201))
		require.NoError(t, w.Header().SetStrings("X-Partial", "gone"))

		return errors.New("handler blew up before writing")
	})

	require.Error(t, err)
	assert.False(t, startingRan, "on-starting must not run when the handler fails before commit")
	assert.True(t, completedRan, "on-completed must run exactly once regardless")

	assert.Equal(t, http.StatusInternalServerError, tr.Status())
	assert.Empty(t, tr.HeaderValues("X-Partial"), "partially-set headers are discarded")
	assert.Empty(t, tr.Body())

	status, ok := w.FinalStatus()
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, status, "teardown must observe the override")
	assert.Equal(t, int64(http.StatusInternalServerError), logs.LastFinalStatus)
	assert.Equal(t, int64(1), logs.NumHandlerFailure)
}

func TestFailureWithTypedStatus(t *testing.T) {
	logs := respond.NewTestLogger(t)

	tr, _, err := execute(t, logs, func(w *respond.Response, r *http.Request) error {
		return respond.NewError(http.StatusNotFound, errors.New("nothing here"))
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, tr.Status())
}

func TestNormalCompletionOrdering(t *testing.T) {
	logs := respond.NewTestLogger(t)

	var committedAtStarting, completedAtStarting bool
	var committedAtDone bool
	var wref *respond.Response

	tr, w, err := execute(t, logs, func(w *respond.Response, r *http.Request) error {
		wref = w
		require.NoError(t, w.OnStarting(func(context.Context) error {
			committedAtStarting = w.HeadersSent()
			completedAtStarting = w.State() == respond.StateCompleted
			return nil
		}))
		require.NoError(t, w.OnCompleted(func(context.Context) error {
			committedAtDone = w.State() == respond.StateCompleted
			return nil
		}))

		_, werr := w.Write([]byte("ok"))
		return werr
	})

	require.NoError(t, err)
	assert.False(t, committedAtStarting, "on-starting fires strictly before the commit is observable")
	assert.False(t, completedAtStarting)
	assert.True(t, committedAtDone, "on-completed fires strictly after the response finished")

	assert.Equal(t, 200, tr.Status())
	assert.Equal(t, "ok", string(tr.Body()))
	assert.Equal(t, respond.StateCompleted, wref.State())

	status, ok := w.FinalStatus()
	require.True(t, ok)
	assert.Equal(t, tr.Status(), status, "teardown status equals the transmitted status")
}

func TestFailureAfterCommitAborts(t *testing.T) {
	logs := respond.NewTestLogger(t)

	var completedRan bool
	tr, w, err := execute(t, logs, func(w *respond.Response, r *http.Request) error {
		require.NoError(t, w.OnCompleted(func(context.Context) error {
			completedRan = true
			return nil
		}))

		require.NoError(t, w.SetStatus(http.StatusAccepted))
		if _, werr := w.Write([]byte("partial")); werr != nil {
			return werr
		}
		if werr := w.FlushBody(); werr != nil {
			return werr
		}

		return errors.New("died mid-response")
	})

	require.Error(t, err)
	require.Error(t, tr.AbortReason(), "failure after transmission degrades to an abort")

	// the already-transmitted status cannot be rewritten.
	assert.Equal(t, http.StatusAccepted, tr.Status())
	assert.Equal(t, "partial", string(tr.Body()))
	assert.True(t, completedRan)

	status, ok := w.FinalStatus()
	require.True(t, ok)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, int64(1), logs.NumAbort)
}

func TestPanicIsAHandlerFailure(t *testing.T) {
	logs := respond.NewTestLogger(t)

	var completedRan bool
	tr, _, err := execute(t, logs, func(w *respond.Response, r *http.Request) error {
		require.NoError(t, w.OnCompleted(func(context.Context) error {
			completedRan = true
			return nil
		}))
		panic("kaboom")
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, tr.Status())
	assert.True(t, completedRan)
}

func TestHandlerWithoutBodyGetsHeaderOnlyCommit(t *testing.T) {
	logs := respond.NewTestLogger(t)

	tr, _, err := execute(t, logs, func(w *respond.Response, r *http.Request) error {
		return w.SetStatus(http.StatusNoContent)
	})

	require.NoError(t, err)
	assert.True(t, tr.Transmitted(), "completion must commit headers even without a body")
	assert.Equal(t, http.StatusNoContent, tr.Status())
	assert.Empty(t, tr.Body())
}

func TestFramingShortfallSurfacesFromBoundary(t *testing.T) {
	logs := respond.NewTestLogger(t)

	tr, _, err := execute(t, logs, func(w *respond.Response, r *http.Request) error {
		if err := w.SetContentLength(100); err != nil {
			return err
		}
		if _, werr := w.Write([]byte("way too short")); werr != nil {
			return werr
		}

		return w.FlushBody()
	})

	require.True(t, respond.IsFramingViolation(err), "got: %v", err)
	require.Error(t, tr.AbortReason(), "a shortfall after transmission degrades to an abort")
	assert.Equal(t, int64(1), logs.NumAbort)
}

func TestToStdFramingShortfallAbortsConnection(t *testing.T) {
	logs := respond.NewTestLogger(t)
	h := respond.ToStd(respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
		if err := w.SetContentLength(100); err != nil {
			return err
		}
		_, err := w.Write([]byte("five!"))
		return err
	}), logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)

	defer func() {
		require.Equal(t, http.ErrAbortHandler, recover(),
			"a response short of its declared length must not end normally")
	}()

	h.ServeHTTP(rec, req)
	t.Fatal("expected ServeHTTP to panic with ErrAbortHandler")
}

func TestToStdSuccess(t *testing.T) {
	logs := respond.NewTestLogger(t)
	h := respond.ToStd(respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
		if err := w.Header().SetStrings("X-Served", "yes"); err != nil {
			return err
		}
		if err := w.SetStatus(http.StatusCreated); err != nil {
			return err
		}
		_, err := w.Write([]byte("made"))
		return err
	}), logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/make", nil)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "yes", rec.Header().Get("X-Served"))
	require.Equal(t, "made", rec.Body.String())
}

func TestToStdHandlerFailure(t *testing.T) {
	logs := respond.NewTestLogger(t)
	h := respond.ToStd(respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
		_ = w.Header().SetStrings("X-Partial", "gone")
		return errors.New("boom")
	}), logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("X-Partial"))
	require.Empty(t, rec.Body.String(), "failure response is header-only")
	require.Equal(t, int64(1), logs.NumHandlerFailure)
}

func TestToStdMidResponseFailurePanicsAbort(t *testing.T) {
	logs := respond.NewTestLogger(t)
	h := respond.ToStd(respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
		if _, err := w.Write([]byte("partial")); err != nil {
			return err
		}
		if err := w.FlushBody(); err != nil {
			return err
		}
		return errors.New("died mid-response")
	}), logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)

	defer func() {
		v := recover()
		require.Equal(t, http.ErrAbortHandler, v, "mid-response failure must abort the connection")
		require.Equal(t, "partial", rec.Body.String())
	}()

	h.ServeHTTP(rec, req)
	t.Fatal("expected ServeHTTP to panic with ErrAbortHandler")
}

func TestToBareContextInit(t *testing.T) {
	type userCtx struct {
		context.Context
		User string
	}

	h := respond.HandlerFunc[userCtx](func(ctx userCtx, w *respond.Response, r *http.Request) error {
		_, err := w.Write([]byte("hello " + ctx.User))
		return err
	})

	bare := respond.ToBare(h, func(r *http.Request) (userCtx, error) {
		return userCtx{Context: r.Context(), User: "ana"}, nil
	})

	logs := respond.NewTestLogger(t)
	tr := respondtest.NewRecordingTransport()
	w := respond.NewResponse(context.Background(), tr, logs)
	t.Cleanup(w.Free)

	require.NoError(t, respond.Execute(bare, w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, "hello ana", string(tr.Body()))
}
