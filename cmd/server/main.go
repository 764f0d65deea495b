package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/diewo77/plombicrm/internal/config"
	"github.com/diewo77/plombicrm/internal/db"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "plombicrm",
		Short:        "CRM for a plumbing business: quotes, e-signature and job tracking",
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, args []string) error { return serve() },
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server and the scheduled digest",
			RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the schema, seed the account and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				conn, err := db.Open(cfg.Database)
				if err != nil {
					return err
				}
				if err := db.Migrate(conn); err != nil {
					return err
				}
				if _, err := db.EnsureAccount(conn, cfg.Account); err != nil {
					return err
				}
				log.Println("Migrations completed successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete clients, quotes, projects and notifications of the account",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				conn, err := db.Open(cfg.Database)
				if err != nil {
					return err
				}
				uid, err := db.EnsureAccount(conn, cfg.Account)
				if err != nil {
					return err
				}
				if err := db.Reset(conn, uid); err != nil {
					return err
				}
				log.Println("Data reset")
				return nil
			},
		},
	)
	return root
}

func serve() error {
	cfg := config.Load()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (env=%s, calendar=%s)", cfg.Server.Port, cfg.App.Env, cfg.Calendar.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
	return nil
}
