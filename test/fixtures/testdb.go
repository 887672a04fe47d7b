package fixtures

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed minimal_data.sql
var minimalDataSQL string

// Song IDs present in minimal_data.sql.
const (
	SongEntrance = "s1" // 입례
	SongGrace    = "s2" // 은혜
	SongLove     = "s3" // 주님 사랑
	SongThanks   = "s4" // 감사
	SongMorning  = "s5" // Morning Light
)

// CreateTestDB creates a temporary SQLite database with the song schema and
// minimal_data applied. The database is closed before return; the file is
// removed when the test ends.
func CreateTestDB(t *testing.T) string {
	t.Helper()
	return create(t, true)
}

// CreateEmptyDB is CreateTestDB without any rows, for import tests.
func CreateEmptyDB(t *testing.T) string {
	t.Helper()
	return create(t, false)
}

func create(t *testing.T, withData bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	if withData && len(minimalDataSQL) > 0 {
		if _, err := db.Exec(minimalDataSQL); err != nil {
			t.Fatalf("exec minimal_data: %v", err)
		}
	}
	return path
}

// OpenTestDB opens a temporary database and returns a *sql.DB (caller must Close).
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", CreateTestDB(t))
	if err != nil {
		t.Fatalf("reopen test db: %v", err)
	}
	return db
}
