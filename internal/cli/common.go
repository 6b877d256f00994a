package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/logger"
)

// openDatabase opens an existing library database. Commands never create
// one: a mistyped -db path should fail rather than sweep an empty file.
func openDatabase(path string, verbose bool) (*database.Database, *zap.Logger, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("database not found: %s", path)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, "library-cli")

	db, err := database.NewDatabase(path, database.Options{Debug: verbose, Logger: log})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, log, nil
}
