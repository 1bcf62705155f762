package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOriginSet(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"listed origin", []string{"http://localhost:5173"}, "http://localhost:5173", true},
		{"unlisted origin", []string{"http://localhost:5173"}, "http://evil.example", false},
		{"wildcard", []string{"*"}, "http://anywhere.example", true},
		{"trims whitespace", []string{" http://localhost:5173 "}, "http://localhost:5173", true},
		{"ignores empty entries", []string{"", "http://localhost:5173"}, "http://localhost:5173", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := newOriginSet(tc.allowed)
			if got := set.contains(tc.origin); got != tc.want {
				t.Fatalf("contains(%q) = %v, want %v", tc.origin, got, tc.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS([]string{"http://localhost:5173"}, next)

	t.Run("allowed preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/wishlists", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("expected allow-origin header, got %q", got)
		}
	})

	t.Run("disallowed preflight is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/wishlists", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("disallowed simple request passes through without headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no allow-origin header, got %q", got)
		}
	})

	t.Run("socket check shares the allow-list", func(t *testing.T) {
		check := originChecker([]string{"http://localhost:5173"})

		req := httptest.NewRequest(http.MethodGet, "/wishlists/ws/slug", nil)
		if !check(req) {
			t.Error("expected originless request to pass")
		}

		req.Header.Set("Origin", "http://localhost:5173")
		if !check(req) {
			t.Error("expected listed origin to pass")
		}

		req.Header.Set("Origin", "http://evil.example")
		if check(req) {
			t.Error("expected unlisted origin to be rejected")
		}
	})
}
