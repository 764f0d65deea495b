package storage

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalSaveAndServe(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "quotes")
	s, err := NewLocal(dir, "/public/quotes/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	url, err := s.Save("DV-00001.pdf", []byte("%PDF-1.3 test"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "/public/quotes/DV-00001.pdf" {
		t.Fatalf("url=%s", url)
	}
	got, err := s.Open("DV-00001.pdf")
	if err != nil || string(got) != "%PDF-1.3 test" {
		t.Fatalf("Open: %q %v", got, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %d entries", len(entries))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /public/quotes/", s.Handler())

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/quotes/DV-00001.pdf", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "%PDF-1.3 test" {
		t.Fatalf("serve: %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/quotes/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("directory listing should be refused, got %d", rr.Code)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "/docs")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../x.pdf", "a/b.pdf", ".hidden", ""} {
		if _, err := s.Save(name, []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q) err=%v, want ErrInvalidName", name, err)
		}
	}
}
