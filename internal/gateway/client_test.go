package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"kanori/internal/credentials"
	"kanori/internal/gateway"
)

// backend is a scripted REST server counting calls per path.
type backend struct {
	t        *testing.T
	server   *httptest.Server
	refreshN atomic.Int32
	calls    map[string]*atomic.Int32
	handlers map[string]http.HandlerFunc
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		t:        t,
		calls:    make(map[string]*atomic.Int32),
		handlers: make(map[string]http.HandlerFunc),
	}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == gateway.PathRefresh {
			b.refreshN.Add(1)
		}
		if n, ok := b.calls[r.URL.Path]; ok {
			n.Add(1)
		}
		h, ok := b.handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) handle(path string, h http.HandlerFunc) *atomic.Int32 {
	n := &atomic.Int32{}
	b.calls[path] = n
	b.handlers[path] = h
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func loggedIn(t *testing.T, access, refresh string) *credentials.Store {
	t.Helper()
	s := credentials.NewStore("")
	require.NoError(t, s.Install(access, refresh))
	return s
}

func TestDo_AttachesBearerAndCSRF(t *testing.T) {
	b := newBackend(t)
	b.handle("/cookie/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok%2Fen", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	var getCSRF, postCSRF, auth string
	b.handle("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.Method == http.MethodGet {
			getCSRF = r.Header.Get("X-CSRFToken")
		} else {
			postCSRF = r.Header.Get("X-CSRFToken")
		}
		writeJSON(w, http.StatusOK, []any{})
	})

	c := gateway.New(b.server.URL, loggedIn(t, "acc", "ref"))
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/cookie/", nil))
	require.NoError(t, c.Get(ctx, "/tasks/", nil))
	require.NoError(t, c.Post(ctx, "/tasks/", map[string]string{"title": "x"}, nil))

	require.Equal(t, "Bearer acc", auth)
	require.Empty(t, getCSRF, "GET must not carry the anti-forgery header")
	require.Equal(t, "tok/en", postCSRF)
}

func TestDo_NoBearerWhenLoggedOut(t *testing.T) {
	b := newBackend(t)
	var auth string
	b.handle("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []any{})
	})

	c := gateway.New(b.server.URL, credentials.NewStore(""))
	require.NoError(t, c.Get(context.Background(), "/tasks/", nil))
	require.Empty(t, auth)
}

func TestDo_RefreshesAndRetriesOnce(t *testing.T) {
	b := newBackend(t)
	var refreshBody map[string]string
	b.handle(gateway.PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&refreshBody)
		writeJSON(w, http.StatusOK, map[string]string{"access": "new-acc", "refresh": "new-ref"})
	})
	tasks := b.handle("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new-acc" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1}})
	})

	creds := loggedIn(t, "old-acc", "old-ref")
	c := gateway.New(b.server.URL, creds)

	var out []map[string]any
	require.NoError(t, c.Get(context.Background(), "/tasks/", &out))
	require.Len(t, out, 1)
	require.Equal(t, int32(1), b.refreshN.Load())
	require.Equal(t, int32(2), tasks.Load())
	require.Equal(t, "old-ref", refreshBody["refresh"])
	require.Equal(t, "new-acc", creds.AccessToken())
	require.Equal(t, "new-ref", creds.RefreshToken())
}

func TestDo_SecondUnauthorizedIsSurfaced(t *testing.T) {
	b := newBackend(t)
	b.handle(gateway.PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": "new-acc"})
	})
	tasks := b.handle("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
	})

	creds := loggedIn(t, "old-acc", "ref")
	c := gateway.New(b.server.URL, creds)

	err := c.Get(context.Background(), "/tasks/", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, gateway.ErrAuthExpired))
	require.True(t, gateway.IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, int32(1), b.refreshN.Load(), "exactly one refresh")
	require.Equal(t, int32(2), tasks.Load(), "original + one retry")
	// Refresh succeeded, so the (rotated) credentials are kept.
	require.Equal(t, "new-acc", creds.AccessToken())
	require.Equal(t, "ref", creds.RefreshToken())
}

func TestDo_FailedRefreshLogsOut(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"rejected": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad refresh"})
		},
		"missing access": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"refresh": "r2"})
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, "<html>")
		},
	}
	for name, refresh := range cases {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			b.handle(gateway.PathRefresh, refresh)
			tasks := b.handle("/tasks/", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
			})

			creds := loggedIn(t, "acc", "ref")
			var loggedOut bool
			c := gateway.New(b.server.URL, creds, gateway.WithLogoutHook(func() { loggedOut = true }))

			err := c.Get(context.Background(), "/tasks/", nil)
			var httpErr *gateway.HTTPError
			require.ErrorAs(t, err, &httpErr)
			require.Equal(t, http.StatusUnauthorized, httpErr.Status)
			require.Contains(t, httpErr.Body, "expired")
			require.True(t, loggedOut)
			require.False(t, creds.LoggedIn())
			require.Equal(t, int32(1), tasks.Load(), "no retry after failed refresh")
		})
	}
}

func TestDo_NoRefreshWithoutRefreshToken(t *testing.T) {
	b := newBackend(t)
	b.handle("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	creds := loggedIn(t, "acc", "")
	c := gateway.New(b.server.URL, creds)

	err := c.Get(context.Background(), "/tasks/", nil)
	require.ErrorIs(t, err, gateway.ErrAuthExpired)
	require.Equal(t, int32(0), b.refreshN.Load())
	require.False(t, creds.LoggedIn())
}

func TestDo_NoRefreshOnAuthEndpoints(t *testing.T) {
	for _, path := range []string{gateway.PathLogin, gateway.PathRegister, gateway.PathRefresh} {
		t.Run(path, func(t *testing.T) {
			b := newBackend(t)
			unauthorized := func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad credentials"})
			}
			b.handle(gateway.PathLogin, unauthorized)
			b.handle(gateway.PathRegister, unauthorized)
			b.handle(gateway.PathRefresh, unauthorized)

			creds := loggedIn(t, "acc", "ref")
			var loggedOut bool
			c := gateway.New(b.server.URL, creds, gateway.WithLogoutHook(func() { loggedOut = true }))

			err := c.Post(context.Background(), path, map[string]string{"username": "u"}, nil)
			require.True(t, gateway.IsStatus(err, http.StatusUnauthorized))

			wantRefreshCalls := int32(0)
			if path == gateway.PathRefresh {
				wantRefreshCalls = 1 // the request itself
			}
			require.Equal(t, wantRefreshCalls, b.refreshN.Load())
			require.False(t, loggedOut)
			require.True(t, creds.LoggedIn())
		})
	}
}

func TestDo_HTTPErrorCarriesStatusAndBody(t *testing.T) {
	b := newBackend(t)
	b.handle("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"title":["required"]}`)
	})

	c := gateway.New(b.server.URL, credentials.NewStore(""))
	err := c.Post(context.Background(), "/tasks/", map[string]string{}, nil)

	var httpErr *gateway.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Status)
	require.Equal(t, "Bad Request", httpErr.StatusText)
	require.Equal(t, `{"title":["required"]}`, httpErr.Body)
	require.Equal(t, `HTTP 400 Bad Request: {"title":["required"]}`, httpErr.Error())
	require.False(t, errors.Is(err, gateway.ErrAuthExpired))
}

func TestDo_NoContent(t *testing.T) {
	b := newBackend(t)
	b.handle("/tasks/7/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := gateway.New(b.server.URL, credentials.NewStore(""))
	out := map[string]any{"untouched": true}
	require.NoError(t, c.Delete(context.Background(), gateway.Detail(gateway.PathTasks, 7), &out))
	require.Equal(t, map[string]any{"untouched": true}, out)
}

func TestDo_DecodeError(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})

	c := gateway.New(b.server.URL, credentials.NewStore(""))
	var out map[string]any
	err := c.Get(context.Background(), gateway.PathMe, &out)
	require.ErrorIs(t, err, gateway.ErrDecode)
}

func TestDo_NetworkError(t *testing.T) {
	b := newBackend(t)
	url := b.server.URL
	b.server.Close()

	c := gateway.New(url, credentials.NewStore(""))
	err := c.Get(context.Background(), "/tasks/", nil)
	require.ErrorIs(t, err, gateway.ErrNetwork)
}
