package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/auth"
	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/handlers"
	"github.com/diewo77/plombicrm/internal/middleware"
	"github.com/diewo77/plombicrm/internal/models"
	"github.com/diewo77/plombicrm/internal/services"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	DB        *gorm.DB
	Quotes    *services.QuoteService
	Projects  *services.ProjectService
	Settings  *services.SettingsService
	Catalog   *services.CatalogService
	Google    *calendar.Google // nil when the OAuth client is not configured
	Documents http.Handler     // serves stored quote PDFs under /public/quotes/
	BaseURL   string
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	db := d.DB

	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	protect := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }

	// ─────────────────────────────────────────────────────────────────────────
	// Health
	// ─────────────────────────────────────────────────────────────────────────
	//revive:disable:unused-parameter
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /api/auth/login", ah.Login)

	pub := handlers.NewPublicHandler(d.Quotes)
	for _, prefix := range []string{"/public", ""} {
		mux.HandleFunc("GET "+prefix+"/accept/{token}", pub.Accept)
		mux.HandleFunc("GET "+prefix+"/sign/{token}", pub.SignPage)
		mux.HandleFunc("POST "+prefix+"/sign/{token}", pub.Sign)
	}
	if d.Documents != nil {
		mux.Handle("GET /public/quotes/", d.Documents)
	}

	gh := handlers.NewGoogleHandler(d.Google, d.Settings, d.BaseURL)
	mux.HandleFunc("GET /auth/google", gh.Connect)
	mux.HandleFunc("GET /auth/google/callback", gh.Callback)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated API
	// ─────────────────────────────────────────────────────────────────────────
	dh := handlers.NewDashboardHandler(db)
	mux.Handle("GET /api/bootstrap", protect(dh.Bootstrap))
	mux.Handle("GET /api/notifications", protect(dh.Notifications))
	mux.Handle("POST /api/reset", protect(dh.Reset))

	ch := handlers.NewCatalogHandler(d.Catalog)
	mux.Handle("GET /api/clients", protect(ch.ListClients))
	mux.Handle("POST /api/clients", protect(ch.CreateClient))
	mux.Handle("GET /api/services", protect(ch.ListServices))
	mux.Handle("POST /api/services", protect(ch.CreateService))
	mux.Handle("GET /api/materials", protect(ch.ListMaterials))
	mux.Handle("POST /api/materials", protect(ch.CreateMaterial))

	qh := handlers.NewQuoteHandler(db, d.Quotes)
	mux.Handle("GET /api/quotes", protect(qh.List))
	mux.Handle("POST /api/quotes", protect(qh.Create))
	mux.Handle("GET /api/quotes/export.xlsx", protect(qh.Export))
	mux.Handle("GET /api/quotes/{id}/pdf", protect(qh.PDF))
	mux.Handle("PATCH /api/quotes/{id}/ack", protect(qh.ToggleAck))
	mux.Handle("PATCH /api/quotes/{id}/status", protect(qh.SetStatus))

	prh := handlers.NewProjectHandler(d.Projects)
	mux.Handle("GET /api/projects", protect(prh.List))
	mux.Handle("POST /api/projects", protect(prh.Create))
	mux.Handle("PATCH /api/projects/{id}", protect(prh.Update))
	mux.Handle("GET /api/projects/{id}/ics", protect(prh.ICS))
	mux.Handle("POST /api/projects/{id}/sync-calendar", protect(prh.SyncCalendar))

	sh := handlers.NewSettingsHandler(d.Settings)
	mux.Handle("GET /api/settings", protect(sh.Get))
	mux.Handle("PATCH /api/settings", protect(sh.Update))
	mux.Handle("PATCH /api/integrations/{id}", protect(sh.UpdateIntegration))

	mux.Handle("GET /api/google/status", protect(gh.Status))
	mux.Handle("POST /api/google/disconnect", protect(gh.Disconnect))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONErrorLang(w, r, http.StatusNotFound, "not_found", nil)
	})

	return withRecover(withLogging(middleware.Prefs(auth.Middleware(mux))))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging tags each request with an X-Request-ID and logs method, path, status and duration.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s rid=%s", r.Method, r.URL.Path, rec.status, time.Since(start), rid)
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
