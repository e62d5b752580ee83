package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/migration"
	"butchery-pos-api/internal/repositories/sqlite"
)

func main() {
	var (
		dbPath         = flag.String("db", "./data/pos.db", "Database file path")
		migrationsPath = flag.String("migrations", "./migrations", "Migrations directory path")
		jsonPath       = flag.String("json", "./data/export", "JSON export directory path")
		action         = flag.String("action", "seed", "Action: seed, validate, check")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logger
	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Get absolute paths
	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	absJSONPath, err := filepath.Abs(*jsonPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute JSON path")
	}

	logger.WithFields(logrus.Fields{
		"db_path":   absDBPath,
		"json_path": absJSONPath,
		"action":    *action,
	}).Info("Starting cache seeder")

	switch *action {
	case "check":
		checkExport(absJSONPath, logger)
	case "seed":
		if err := runSeed(absDBPath, *migrationsPath, absJSONPath, logger); err != nil {
			logger.WithError(err).Fatal("Seeding failed")
		}
	case "validate":
		if err := runValidate(absDBPath, *migrationsPath, absJSONPath, logger); err != nil {
			logger.WithError(err).Fatal("Validation failed")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: check, seed, validate")
	}

	logger.Info("Cache seeder completed successfully")
}

func checkExport(jsonPath string, logger *logrus.Logger) {
	seeder := migration.NewCacheSeeder(nil, nil, jsonPath, logger)
	hasFiles, existing := seeder.CheckJSONFilesExist()

	if !hasFiles {
		fmt.Println("No export files found in the specified directory.")
		fmt.Printf("Checked directory: %s\n", jsonPath)
		fmt.Println("Expected files: products.json, customers.json")
		return
	}

	fmt.Printf("Found %d export files ready for seeding:\n", len(existing))
	for _, file := range existing {
		fmt.Printf("  %s\n", file)
	}
}

func openStore(dbPath, migrationsPath string, logger *logrus.Logger) (*sqlite.LocalStore, error) {
	store := sqlite.NewLocalStore(dbPath, migrationsPath, logger)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return store, nil
}

func runSeed(dbPath, migrationsPath, jsonPath string, logger *logrus.Logger) error {
	store, err := openStore(dbPath, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	seeder := migration.NewCacheSeeder(store.Products(), store.Customers(), jsonPath, logger)

	hasFiles, _ := seeder.CheckJSONFilesExist()
	if !hasFiles {
		return fmt.Errorf("no export files found in directory: %s", jsonPath)
	}

	result, err := seeder.Seed(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Seeding Results ===\n")
	fmt.Printf("Products seeded: %d\n", result.ProductsSeeded)
	fmt.Printf("Customers seeded: %d\n", result.CustomersSeeded)

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Printf("  %s\n", warning)
		}
	}

	return seeder.Validate(context.Background())
}

func runValidate(dbPath, migrationsPath, jsonPath string, logger *logrus.Logger) error {
	store, err := openStore(dbPath, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	seeder := migration.NewCacheSeeder(store.Products(), store.Customers(), jsonPath, logger)
	if err := seeder.Validate(context.Background()); err != nil {
		return err
	}

	fmt.Println("Cache validation passed")
	return nil
}
