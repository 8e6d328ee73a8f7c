// Command report fetches the current dataset and writes the Excel report
// without starting the web server.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"bookbridge/adapters/excel"
	"bookbridge/adapters/fieldbook"
	"bookbridge/adapters/postgres"
	"bookbridge/app"
	"bookbridge/internal/cache"
	"bookbridge/internal/config"
	"bookbridge/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	output := flag.String("o", "", "output path (defaults to REPORT_OUTPUT)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	path := *output
	if path == "" {
		path = appConfig.Report.OutputPath
	}

	// With a database configured, a record-store outage falls back to the
	// last persisted snapshot
	var snapshots ports.SnapshotStore
	if appConfig.Database.URL != "" {
		db, err := sqlx.Connect("postgres", appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("Failed to prepare snapshot schema: %v", err)
		}
		snapshots = postgres.NewSnapshotRepository(db)
	}

	client := fieldbook.NewClient(
		appConfig.Fieldbook.BaseURL,
		appConfig.Fieldbook.AccessToken,
		appConfig.Fieldbook.RequestTimeout,
		appConfig.Fieldbook.PageSize,
	)
	service := app.NewMetricsService(client, snapshots, cache.NewRecordCache(), appConfig)

	ds, err := service.LoadDataset(context.Background())
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	writer := excel.NewReportWriter(nil)
	if err := writer.Write(path, ds, time.Now()); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	log.Printf("Report written to %s", path)
}
