package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/service"
)

// Loads the ingredient catalog from a two-column CSV (name, unit).
// Re-running on the same file is safe; existing rows are skipped.
func main() {
	path := flag.String("file", "ingredients.csv", "path to the ingredients CSV")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *path, err)
	}
	defer func() { _ = f.Close() }()

	catalog := service.NewCatalogService(db)
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	ctx := context.Background()
	var created, skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *path, err)
		}

		_, isNew, err := catalog.GetOrCreateIngredient(ctx, record[0], record[1])
		if err != nil {
			log.Fatalf("Failed to import ingredient %q: %v", record[0], err)
		}
		if isNew {
			created++
		} else {
			skipped++
		}
	}

	log.Printf("Import finished: %d created, %d already present", created, skipped)
}
