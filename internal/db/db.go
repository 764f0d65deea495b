package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/plombicrm/internal/config"
)

// Open connects to the configured database. Postgres is retried while the server starts up.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("création du dossier de données : %w", err)
			}
		}
		log.Printf("Connecting to database: sqlite path=%s", cfg.Path)
		db, err := gorm.Open(sqlite.Open(cfg.Path+"?_foreign_keys=on"), gcfg)
		if err != nil {
			return nil, fmt.Errorf("connexion BDD échouée : %w", err)
		}
		return db, nil
	case "postgres":
		log.Printf("Connecting to database: host=%s port=%d dbname=%s user=%s",
			cfg.Host, cfg.Port, cfg.DBName, cfg.User)
		var (
			db  *gorm.DB
			err error
		)
		for i := 0; i < 5; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				return db, nil
			}
			log.Printf("Tentative %d/5 échouée, retry...", i+1)
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("connexion BDD échouée : %w", err)
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}
