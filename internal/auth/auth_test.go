package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestIssueAndValidate(t *testing.T) {
	s := NewService("secret", time.Hour)
	tok, err := s.IssueToken("view_123")
	if err != nil {
		t.Fatal(err)
	}
	viewID, err := s.ValidateToken(tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if viewID != "view_123" {
		t.Errorf("ValidateToken() = %q, want view_123", viewID)
	}
}

func TestValidateRejects(t *testing.T) {
	s := NewService("secret", time.Hour)
	tok, err := s.IssueToken("view_123")
	if err != nil {
		t.Fatal(err)
	}

	other := NewService("other-secret", time.Hour)
	if _, err := other.ValidateToken(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: error = %v", err)
	}

	expired := NewService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := expired.ValidateToken(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: error = %v", err)
	}

	if _, err := s.ValidateToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: error = %v", err)
	}
}

func newRouter(s *Service) *mux.Router {
	r := mux.NewRouter()
	protected := r.PathPrefix("/views/{id}").Subrouter()
	protected.Use(s.RequireViewToken)
	protected.HandleFunc("/token", NewHandler(s).Refresh).Methods("POST")
	protected.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ViewIDFromContext(r.Context())))
	})
	return r
}

func TestRequireViewToken(t *testing.T) {
	s := NewService("secret", time.Hour)
	tok, _ := s.IssueToken("view_a")
	router := newRouter(s)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"ok", "/views/view_a/ping", "Bearer " + tok.Token, http.StatusOK},
		{"missing", "/views/view_a/ping", "", http.StatusUnauthorized},
		{"malformed", "/views/view_a/ping", "Token " + tok.Token, http.StatusUnauthorized},
		{"invalid", "/views/view_a/ping", "Bearer nope", http.StatusUnauthorized},
		{"other view", "/views/view_b/ping", "Bearer " + tok.Token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	s := NewService("secret", time.Hour)
	tok, _ := s.IssueToken("view_a")

	req := httptest.NewRequest("POST", "/views/view_a/token", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	newRouter(s).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var fresh Token
	if err := json.NewDecoder(rec.Body).Decode(&fresh); err != nil {
		t.Fatal(err)
	}
	if fresh.ViewID != "view_a" {
		t.Errorf("ViewID = %q", fresh.ViewID)
	}
	if id, err := s.ValidateToken(fresh.Token); err != nil || id != "view_a" {
		t.Errorf("refreshed token: %q, %v", id, err)
	}
}
