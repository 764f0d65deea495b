package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/plombicrm/i18n"
)

func TestPrefs(t *testing.T) {
	var got string
	h := Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.LangFromContext(r.Context())
	}))

	cases := []struct {
		name   string
		url    string
		cookie string
		accept string
		want   string
	}{
		{"default", "/", "", "", "fr"},
		{"header", "/", "", "en-GB,en;q=0.9", "en"},
		{"cookie beats header", "/", "fr", "en-US", "fr"},
		{"query beats cookie", "/?lang=en", "fr", "", "en"},
		{"unknown query ignored", "/?lang=de", "", "", "fr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "lang", Value: tc.cookie})
			}
			if tc.accept != "" {
				r.Header.Set("Accept-Language", tc.accept)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if got != tc.want {
				t.Fatalf("lang=%q want %q", got, tc.want)
			}
		})
	}
}

func TestPrefsRemembersQueryLanguage(t *testing.T) {
	h := Prefs(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "lang" || cookies[0].Value != "en" {
		t.Fatalf("expected lang cookie, got %v", cookies)
	}
}
