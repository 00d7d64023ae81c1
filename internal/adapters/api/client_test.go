package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Mendozape/PayComMobile/internal/ports"
)

func newTestClient(t *testing.T, handler http.Handler, csrf bool) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/api/", CSRFPreflight: csrf, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://host/api"})
	assert.ErrorContains(t, err, "http or https")

	c, err := New(Options{BaseURL: "http://192.168.1.16:8000/api"})
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.16:8000", c.Origin())
}

func TestLogin_WithCSRFPreflight(t *testing.T) {
	var preflights atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sanctum/csrf-cookie", func(w http.ResponseWriter, _ *http.Request) {
		preflights.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: url.QueryEscape("abc=123"), Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc=123", r.Header.Get("X-XSRF-TOKEN"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "ana@example.com", "password": "secret"}, body)
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-1"})
	})

	c := newTestClient(t, mux, true)
	res, err := c.Login(context.Background(), ports.LoginInput{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, int32(1), preflights.Load())
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "rejected credentials",
			status: http.StatusUnprocessableEntity,
			body:   map[string]any{"message": "These credentials do not match our records.", "errors": map[string][]string{"email": {"These credentials do not match our records."}}},
			wantErr: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusUnprocessableEntity, se.Status)
				assert.Equal(t, "These credentials do not match our records.", se.UserMessage())
			},
		},
		{
			name:   "ok without token",
			status: http.StatusOK,
			body:   map[string]string{"message": "ok"},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingToken)
			},
		},
		{
			name:   "server error with non-json body",
			status: http.StatusInternalServerError,
			body:   "boom",
			wantErr: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Empty(t, se.Message)
				assert.Equal(t, "api status 500", se.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}), false)
			_, err := c.Login(context.Background(), ports.LoginInput{Email: "a", Password: "b"})
			require.Error(t, err)
			tt.wantErr(t, err)
		})
	}
}

func TestLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(Options{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)

	_, err = c.Login(context.Background(), ports.LoginInput{Email: "a", Password: "b"})
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestCurrentUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare", body: `{"id": 4, "name": "Ana", "email": "ana@example.com", "roles": [{"id": 1, "name": "Admin", "permissions": [{"name": "Ver-calles"}]}]}`},
		{name: "enveloped", body: `{"data": {"id": 4, "name": "Ana", "email": "ana@example.com", "roles": [{"id": 1, "name": "Admin", "permissions": ["Ver-calles"]}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/user", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.body)
			}), false)

			u, err := c.CurrentUser(context.Background(), "tok")
			require.NoError(t, err)
			assert.EqualValues(t, 4, u.ID)
			require.Len(t, u.Roles, 1)
			assert.Equal(t, "Ver-calles", string(u.Roles[0].Permissions[0]))
		})
	}
}

func TestCurrentUser_Errors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer expired" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	}), false)

	_, err := c.CurrentUser(context.Background(), "")
	assert.Error(t, err)

	_, err = c.CurrentUser(context.Background(), "expired")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Unauthorized())

	_, err = c.CurrentUser(context.Background(), "ok")
	assert.ErrorContains(t, err, "empty")
}

func TestList_EnvelopeAndBareArray(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/streets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Av", r.URL.Query().Get("search"))
		_, _ = io.WriteString(w, `{"data": [{"id": 1, "name": "Av. Juarez"}, {"id": 2, "name": "Av. Hidalgo", "deleted_at": "2024-01-01T00:00:00Z"}]}`)
	})
	mux.HandleFunc("GET /api/roles", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id": 1, "name": "Admin"}]`)
	})
	mux.HandleFunc("GET /api/fees", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data": {"unexpected": true}}`)
	})

	c := newTestClient(t, mux, false)
	ctx := context.Background()

	streets, err := c.List(ctx, "tok", "streets", url.Values{"search": {"Av"}})
	require.NoError(t, err)
	require.Len(t, streets, 2)
	assert.True(t, streets[1].Deleted())

	roles, err := c.List(ctx, "tok", "roles", nil)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	fees, err := c.List(ctx, "tok", "fees", nil)
	require.NoError(t, err)
	assert.NotNil(t, fees)
	assert.Empty(t, fees)
}

func TestFetchAndSend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/addresses/5", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data": {"id": 5, "type": "CASA", "status": "Habitada"}}`)
	})
	mux.HandleFunc("GET /api/address_payments/paid-months/5/2025", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("fee_id"))
		_, _ = io.WriteString(w, `{"months": [{"month": 1, "status": "Pagado"}, {"month": 2, "status": "Condonado"}]}`)
	})
	mux.HandleFunc("DELETE /api/addresses/5", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sold", body["reason"])
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /api/streets/9", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  map[string][]string{"name": {"The name has already been taken."}},
		})
	})

	c := newTestClient(t, mux, false)
	ctx := context.Background()

	addr, err := c.Fetch(ctx, "tok", "addresses/5", nil)
	require.NoError(t, err)
	assert.Equal(t, "Habitada", addr.String("status"))

	months, err := c.Fetch(ctx, "tok", "address_payments/paid-months/5/2025", url.Values{"fee_id": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"month": float64(1), "status": "Pagado"},
		map[string]any{"month": float64(2), "status": "Condonado"},
	}, months["months"])

	out, err := c.Send(ctx, "tok", http.MethodDelete, "addresses/5", map[string]string{"reason": "sold"})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = c.Send(ctx, "tok", http.MethodPut, "streets/9", map[string]string{"name": "dup"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "The name has already been taken.", se.UserMessage())
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	c, err := New(Options{BaseURL: srv.URL, Limiter: limiter})
	require.NoError(t, err)

	_, err = c.List(context.Background(), "tok", "streets", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.List(ctx, "tok", "streets", nil)
	assert.Error(t, err, "second request exceeds the burst and must wait past the deadline")
}

func TestStatusError_FirstValidationMessage(t *testing.T) {
	se := newStatusError(422, []byte(`{"message": "invalid", "errors": {"email": ["bad email"], "amount": ["bad amount"]}}`))
	assert.Equal(t, "bad amount", se.FirstValidationMessage())
	assert.Equal(t, "bad amount", se.UserMessage())

	plain := newStatusError(500, []byte(`{"error": "Server Error"}`))
	assert.Equal(t, "Server Error", plain.UserMessage())
	assert.False(t, plain.Unauthorized())
}
