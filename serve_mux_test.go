package respond_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/corewire/respond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*respond.ServeMux, *respond.TestLogger) {
	t.Helper()

	logs := respond.NewTestLogger(t)

	return respond.NewServeMuxWith(logs, http.NewServeMux()), logs
}

func TestServeMuxRouting(t *testing.T) {
	mux, _ := newTestMux(t)
	mux.HandleFunc("GET /items/{id}", func(ctx context.Context, w *respond.Response, r *http.Request) error {
		_, err := fmt.Fprintf(w, "item %s", r.PathValue("id"))
		return err
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "item 42", rec.Body.String())
}

func TestServeMuxErrorBecomesFailureResponse(t *testing.T) {
	mux, logs := newTestMux(t)
	mux.HandleFunc("GET /broken", func(ctx context.Context, w *respond.Response, r *http.Request) error {
		return errors.New("nope")
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, int64(1), logs.NumHandlerFailure)
}

func TestServeMuxMiddlewareOrder(t *testing.T) {
	mux, _ := newTestMux(t)

	var order []string
	mw := func(name string) respond.Middleware {
		return func(next respond.BareHandler) respond.BareHandler {
			return respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
				order = append(order, name)
				return next.ServeBare(w, r)
			})
		}
	}

	mux.Use(mw("outer"), mw("inner"))
	mux.HandleFunc("GET /", func(ctx context.Context, w *respond.Response, r *http.Request) error {
		order = append(order, "handler")
		return nil
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	mux.ServeHTTP(rec, req)

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestServeMuxUseAfterHandlePanics(t *testing.T) {
	mux, _ := newTestMux(t)
	mux.HandleFunc("GET /", func(ctx context.Context, w *respond.Response, r *http.Request) error {
		return nil
	})

	require.Panics(t, func() {
		mux.Use(func(next respond.BareHandler) respond.BareHandler { return next })
	})
}

func TestServeMuxMiddlewareSeesFinalStatusViaHook(t *testing.T) {
	mux, _ := newTestMux(t)

	var logged int
	mux.Use(func(next respond.BareHandler) respond.BareHandler {
		return respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
			if err := w.OnCompleted(func(context.Context) error {
				logged, _ = w.FinalStatus()
				return nil
			}); err != nil {
				return err
			}
			return next.ServeBare(w, r)
		})
	})
	mux.HandleFunc("GET /fails", func(ctx context.Context, w *respond.Response, r *http.Request) error {
		return respond.NewError(http.StatusTeapot, errors.New("short and stout"))
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fails", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, http.StatusTeapot, logged, "hook observes the committed override, not the default")
}

func TestServeMuxHandleStd(t *testing.T) {
	mux, _ := newTestMux(t)
	mux.HandleStd("GET /std", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Std", "yes")
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, "from std")
	}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/std", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "yes", rec.Header().Get("X-Std"))
	require.Equal(t, "from std", rec.Body.String())
}

func TestServeMuxHandleBare(t *testing.T) {
	mux, _ := newTestMux(t)
	mux.HandleBare("GET /bare", respond.BareHandlerFunc(func(w *respond.Response, r *http.Request) error {
		_, err := w.Write([]byte("bare"))
		return err
	}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bare", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, "bare", rec.Body.String())
}
