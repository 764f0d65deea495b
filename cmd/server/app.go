package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/robfig/cron/v3"

	"github.com/diewo77/plombicrm/auth"
	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/config"
	"github.com/diewo77/plombicrm/internal/db"
	"github.com/diewo77/plombicrm/internal/jobs"
	"github.com/diewo77/plombicrm/internal/mail"
	"github.com/diewo77/plombicrm/internal/server"
	"github.com/diewo77/plombicrm/internal/services"
	"github.com/diewo77/plombicrm/internal/storage"
	"github.com/diewo77/plombicrm/pdf"
)

// app holds the running pieces that need to be released on shutdown.
type app struct {
	handler http.Handler
	cron    *cron.Cron
}

func (a *app) stop() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
}

// newApp connects the database and wires services, routes and the digest job.
func newApp(cfg *config.Config) (*app, error) {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			return nil, err
		}
		log.Println("Migrations completed")
	}
	uid, err := db.EnsureAccount(conn, cfg.Account)
	if err != nil {
		return nil, fmt.Errorf("seed account: %w", err)
	}

	if cfg.App.JWTSecret == "dev-secret" && !cfg.App.Dev {
		log.Println("warning: JWT_SECRET is not set, using the development secret")
	}
	auth.SetSecret(cfg.App.JWTSecret)

	mailer := mail.New(mail.Config{
		Host: cfg.Mail.Host,
		Port: cfg.Mail.Port,
		User: cfg.Mail.User,
		Pass: cfg.Mail.Pass,
		From: cfg.Mail.From,
	})

	docs, err := storage.NewLocal(cfg.App.QuotesDir, "/public/quotes/")
	if err != nil {
		return nil, err
	}

	settings := services.NewSettingsService(conn)
	google := calendar.NewGoogle(
		calendar.GoogleConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL),
		settings.Credentials(),
	)
	caldav := calendar.NewCalDAV(calendar.CalDAVConfig{
		URL:         cfg.CalDAV.URL,
		CalendarURL: cfg.CalDAV.CalendarURL,
		User:        cfg.CalDAV.User,
		Pass:        cfg.CalDAV.Pass,
	})
	syncer := calendar.Select(cfg.Calendar.Backend, google, caldav)

	company := pdf.Party{
		Name:    cfg.Company.Name,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
		Email:   cfg.Company.Email,
	}

	handler := server.New(server.Deps{
		DB:        conn,
		Quotes:    services.NewQuoteService(conn, mailer, docs, company, cfg.App.BaseURL),
		Projects:  services.NewProjectService(conn, syncer),
		Settings:  settings,
		Catalog:   services.NewCatalogService(conn),
		Google:    google,
		Documents: docs.Handler(),
		BaseURL:   cfg.App.BaseURL,
	})

	c, err := jobs.Start(cfg.Jobs.DigestSchedule, &jobs.Digest{
		DB:      conn,
		Mailer:  mailer,
		To:      cfg.Company.Email,
		Account: uid,
	})
	if err != nil {
		return nil, err
	}
	return &app{handler: handler, cron: c}, nil
}
