package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

// Init creates the song catalog at path and loads the demo songs. Existing
// tables and rows are left alone, so Init can run against a live catalog.
func Init(path string) error {
	return create(path, schemaSQL, seedSQL)
}

// InitSchema creates the tables only, for catalogs filled by an import.
func InitSchema(path string) error {
	return create(path, schemaSQL)
}

func create(path string, scripts ...string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	for i, script := range scripts {
		if _, err := db.Exec(script); err != nil {
			if i == 0 {
				return fmt.Errorf("schema: %w", err)
			}
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}
