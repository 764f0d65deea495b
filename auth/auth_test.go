package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")
	tok, err := IssueToken(7, "crm@example.fr", "CRM Plomberie", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := ParseToken(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.ID != 7 || c.Email != "crm@example.fr" || c.Name != "CRM Plomberie" {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")
	tok, err := IssueToken(7, "a@b.c", "A", time.Now().Add(-8*24*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken(tok); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	SetSecret("one")
	tok, _ := IssueToken(1, "a@b.c", "A", time.Now())
	SetSecret("two")
	defer SetSecret("")
	if _, err := ParseToken(tok); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestRequireAuth(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		if uid != 3 {
			t.Errorf("expected uid 3 got %d", uid)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(RequireAuth(ok))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bootstrap", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	tok, _ := IssueToken(3, "a@b.c", "A", time.Now())
	r := httptest.NewRequest(http.MethodGet, "/api/bootstrap", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with token, got %d", w.Code)
	}

	SetUserVerifier(func(_ context.Context, uid uint) bool { return false })
	defer SetUserVerifier(nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", w.Code)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := WithUserID(context.Background(), 9)
	if id, ok := UserIDFromContext(ctx); !ok || id != 9 {
		t.Fatalf("expected 9 got %d %v", id, ok)
	}
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Fatalf("expected no user")
	}
}
