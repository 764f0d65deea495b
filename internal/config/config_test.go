package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "BASE_URL", "DB_DRIVER", "DB_PATH", "CALENDAR_BACKEND",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "ICLOUD_CALDAV_URL", "ICLOUD_CALDAV_USER", "ICLOUD_CALDAV_PASS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "3000" {
		t.Fatalf("port=%s", cfg.Server.Port)
	}
	if cfg.App.BaseURL != "http://localhost:3000" {
		t.Fatalf("base url=%s", cfg.App.BaseURL)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN() != "data/crm.sqlite" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Calendar.Backend != "none" {
		t.Fatalf("backend=%s", cfg.Calendar.Backend)
	}
	if cfg.Google.RedirectURL != "http://localhost:3000/auth/google/callback" {
		t.Fatalf("redirect=%s", cfg.Google.RedirectURL)
	}
}

func TestPostgresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DATABASE_DSN", "")
	cfg := Load()
	want := "host=db port=6543 user=postgres password=postgres dbname=plombicrm sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Fatalf("DSN()=%q want %q", got, want)
	}

	t.Setenv("DATABASE_DSN", `"postgres://u:p@h/db"`)
	if got := Load().Database.DSN(); got != "postgres://u:p@h/db" {
		t.Fatalf("DATABASE_DSN not honoured: %q", got)
	}
}

func TestCalendarBackendDetection(t *testing.T) {
	t.Setenv("CALENDAR_BACKEND", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("ICLOUD_CALDAV_URL", "https://caldav.icloud.com")
	t.Setenv("ICLOUD_CALDAV_USER", "me")
	t.Setenv("ICLOUD_CALDAV_PASS", "pw")
	if b := Load().Calendar.Backend; b != "caldav" {
		t.Fatalf("backend=%s", b)
	}

	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	if b := Load().Calendar.Backend; b != "google" {
		t.Fatalf("google should win auto-detect, got %s", b)
	}

	t.Setenv("CALENDAR_BACKEND", "none")
	if b := Load().Calendar.Backend; b != "none" {
		t.Fatalf("explicit backend ignored, got %s", b)
	}
}

func TestDigestScheduleCanBeDisabled(t *testing.T) {
	t.Setenv("DIGEST_SCHEDULE", "")
	if s := Load().Jobs.DigestSchedule; s != "" {
		t.Fatalf("empty DIGEST_SCHEDULE should disable the digest, got %q", s)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "nope")
	if v := getEnvInt("X_INT", 4); v != 4 {
		t.Fatalf("getEnvInt=%d", v)
	}
	t.Setenv("X_BOOL", "true")
	if !getEnvBool("X_BOOL", false) {
		t.Fatalf("getEnvBool should parse true")
	}
}
