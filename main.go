package main

import (
	"context"
	"log"

	"bookbridge/adapters/fieldbook"
	"bookbridge/adapters/postgres"
	"bookbridge/app"
	"bookbridge/internal/cache"
	"bookbridge/internal/config"
	"bookbridge/internal/errors"
	"bookbridge/ports"
	"bookbridge/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects the optional snapshot store. Returns nil when no
// DATABASE_URL is configured.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to prepare snapshot schema")
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	var snapshots ports.SnapshotStore
	if db != nil {
		defer db.Close()
		snapshots = postgres.NewSnapshotRepository(db)
		log.Println("Snapshot store enabled")
	} else {
		log.Println("No DATABASE_URL configured, snapshots disabled")
	}

	client := fieldbook.NewClient(
		appConfig.Fieldbook.BaseURL,
		appConfig.Fieldbook.AccessToken,
		appConfig.Fieldbook.RequestTimeout,
		appConfig.Fieldbook.PageSize,
	)

	service := app.NewMetricsService(client, snapshots, cache.NewRecordCache(), appConfig)

	dashboard, err := ui.NewApp(service)
	if err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}

	log.Printf("Starting BookBridge server on port %s", appConfig.Server.Port)
	log.Fatal(dashboard.Serve(appConfig.Server.Port))
}
