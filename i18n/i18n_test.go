package i18n

import (
	"context"
	"testing"
	"time"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("fr-FR,fr;q=0.8") != "fr" {
		t.Fatalf("expected fr fallback")
	}
	if DetectLanguage("") != "fr" {
		t.Fatalf("expected default fr")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("fr", "required") != "Requis" {
		t.Fatalf("expected Requis")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to fr translation if exists
	if T("es", "required") != "Requis" {
		t.Fatalf("expected fr fallback for es lang")
	}
}

func TestLongDate(t *testing.T) {
	d := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	if got := LongDate("fr", d); got != "4 mars 2026" {
		t.Fatalf("fr long date = %q", got)
	}
	if got := LongDate("en", d); got != "March 4, 2026" {
		t.Fatalf("en long date = %q", got)
	}
}

func TestLangContext(t *testing.T) {
	if LangFromContext(context.Background()) != "fr" {
		t.Fatalf("expected fr default")
	}
	if LangFromContext(WithLang(context.Background(), "en")) != "en" {
		t.Fatalf("expected en from context")
	}
}
