package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/plombicrm/i18n"
)

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusNotFound, "quote_not_found", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "quote_not_found" || body.Message != "Devis introuvable." {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestJSONErrorLang(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(i18n.WithLang(r.Context(), "en"))
	w := httptest.NewRecorder()
	JSONErrorLang(w, r, http.StatusBadRequest, "invalid_duration", map[string]string{"hours": "must_be_positive"})
	if !strings.Contains(w.Body.String(), `"message":"Invalid duration."`) {
		t.Fatalf("expected english message, got %s", w.Body.String())
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("missing content type")
	}
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	var dst struct{ Name string }
	if err := DecodeJSON(r, &dst); err != nil || dst.Name != "x" {
		t.Fatalf("decode failed: %v %+v", err, dst)
	}
}
