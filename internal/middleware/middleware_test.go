package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc.def", "abc.def", nil},
		{"", "", auth.ErrMissingToken},
		{"Basic abc", "", auth.ErrInvalidToken},
		{"Bearer", "", auth.ErrInvalidToken},
		{"Bearer a b", "", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("BearerToken(%q) error = %v, want %v", tt.header, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", "test", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	ctx, err := Authenticate(context.Background(), jwtManager, "Bearer "+token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if GetUserID(ctx) != "u1" || GetEmail(ctx) != "u1@example.com" {
		t.Errorf("claims not stored in context")
	}
	if c := GetClaims(ctx); c == nil || c.ID == "" {
		t.Errorf("token claims not stored in context: %+v", c)
	}

	if _, err := Authenticate(context.Background(), jwtManager, "Bearer nope"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

type revokeAll struct{}

func (revokeAll) IsTokenRevoked(context.Context, string, int64) (bool, error) { return true, nil }

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", "test", time.Hour, auth.WithRevocationCheck(revokeAll{}))
	token, err := jwtManager.Generate(&models.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	ctx, err := Authenticate(context.Background(), jwtManager, "Bearer "+token)
	if !errors.Is(err, auth.ErrRevokedToken) {
		t.Errorf("expected ErrRevokedToken, got %v", err)
	}
	if GetUserID(ctx) != "" {
		t.Error("revoked token must not populate the context")
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS([]string{"http://app.test"}, next)

	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	req.Header.Set("Origin", "http://APP.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want passthrough", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://APP.test" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/groups", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[connect.Code]int{
		connect.CodeNotFound:           http.StatusNotFound,
		connect.CodePermissionDenied:   http.StatusForbidden,
		connect.CodeAlreadyExists:      http.StatusConflict,
		connect.CodeFailedPrecondition: http.StatusPreconditionFailed,
		connect.CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := httpStatus(code); got != want {
			t.Errorf("httpStatus(%v) = %d, want %d", code, got, want)
		}
	}
}
