package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) result {
	t.Helper()
	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := serve(t, New(nil), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := decode(t, rec); body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	stopped := func(context.Context) error { return errors.New("loop stopped") }

	tests := []struct {
		name     string
		checkers []Checker
		code     int
		status   string
		checks   map[string]string
	}{
		{
			name:   "no checkers",
			code:   http.StatusOK,
			status: "ok",
		},
		{
			name:     "all pass",
			checkers: []Checker{{Name: "loop", Check: ok}, {Name: "catalog", Check: ok}},
			code:     http.StatusOK,
			status:   "ok",
			checks:   map[string]string{"loop": "ok", "catalog": "ok"},
		},
		{
			name:     "one fails",
			checkers: []Checker{{Name: "loop", Check: stopped}, {Name: "catalog", Check: ok}},
			code:     http.StatusServiceUnavailable,
			status:   "fail",
			checks:   map[string]string{"loop": "fail: loop stopped", "catalog": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, New(tt.checkers), "/readyz")
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			body := decode(t, rec)
			if body.Status != tt.status {
				t.Errorf("status = %q, want %q", body.Status, tt.status)
			}
			for k, want := range tt.checks {
				if body.Checks[k] != want {
					t.Errorf("checks[%q] = %q, want %q", k, body.Checks[k], want)
				}
			}
		})
	}
}

func TestReadyz_CheckerGetsDeadline(t *testing.T) {
	t.Parallel()

	var hadDeadline bool
	h := New([]Checker{{Name: "loop", Check: func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}}})
	serve(t, h, "/readyz")
	if !hadDeadline {
		t.Error("checker context has no deadline")
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("unset", func(t *testing.T) {
		t.Parallel()
		if rec := serve(t, New(nil), "/status"); rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, want 404", rec.Code)
		}
	})

	t.Run("document", func(t *testing.T) {
		t.Parallel()
		h := New(nil, WithStatus(func(context.Context) (any, error) {
			return map[string]string{"group": "Head"}, nil
		}))
		rec := serve(t, h, "/status")
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", rec.Code)
		}
		var got map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got["group"] != "Head" {
			t.Errorf("group = %q, want Head", got["group"])
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		h := New(nil, WithStatus(func(context.Context) (any, error) {
			return nil, errors.New("loop stopped")
		}))
		rec := serve(t, h, "/status")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("code = %d, want 503", rec.Code)
		}
		if body := decode(t, rec); body.Status != "fail" {
			t.Errorf("status = %q, want fail", body.Status)
		}
	})
}
