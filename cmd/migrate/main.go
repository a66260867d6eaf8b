package main

import (
	"flag"
	"log"

	"github.com/pageza/nutriscan/backend/config"
	"github.com/pageza/nutriscan/backend/internal/database"
)

func main() {
	backend := flag.String("backend", "", "Store backend to migrate (sqlite or postgres), defaults to STORE_BACKEND")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *backend != "" {
		cfg.StoreBackend = *backend
	}
	if cfg.StoreBackend == config.BackendFile {
		log.Println("File store needs no migration")
		return
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied successfully")
}
