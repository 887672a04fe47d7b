package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/songslide/songslide/internal/data"
)

//go:embed schema.sql
var schemaSQL string

const songColumns = "id, title, artist, chorus_first_line, verse1_first_line, two_line_units, lyrics_full, copyright_holder, ccli_number, tags, created_at"

// Store implements data.DataSource on Postgres.
//
// Tables (in the configured schema):
//   - songs
//   - search_weight_config
//
// Candidate selection goes through the search_song_candidates SQL function so
// it can be tuned in the database without a redeploy.
type Store struct {
	pool   *pgxpool.Pool
	schema string // quoted
	logger *slog.Logger
}

var _ data.DataSource = (*Store)(nil)

// Open connects to url and returns a Store using schema (default "public").
func Open(ctx context.Context, url, schema string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s, err := New(pool, schema, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, schema string, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if strings.TrimSpace(schema) == "" {
		schema = "public"
	}
	quoted, err := quoteIdent(schema)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, schema: quoted, logger: logger}, nil
}

func quoteIdent(ident string) (string, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return "", fmt.Errorf("empty identifier")
	}
	for _, r := range ident {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return "", fmt.Errorf("invalid identifier %q", ident)
	}
	return `"` + ident + `"`, nil
}

// EnsureSchema creates the tables and the candidate function if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire pg connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+s.schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec(ctx, "SET LOCAL search_path = "+s.schema); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) table(name string) string {
	return s.schema + "." + name
}

func scanSong(row pgx.CollectableRow) (*data.Song, error) {
	var song data.Song
	err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.ChorusFirstLine, &song.Verse1FirstLine,
		&song.TwoLineUnits, &song.LyricsFull, &song.CopyrightHolder, &song.CCLINumber, &song.Tags, &song.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &song, nil
}

func (s *Store) querySongs(ctx context.Context, q string, args ...any) ([]*data.Song, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSong)
}

// SearchCandidates calls search_song_candidates. If the function fails (for
// example it was never installed) the newest songs are returned instead.
func (s *Store) SearchCandidates(ctx context.Context, query string, limit int) ([]*data.Song, error) {
	songs, err := s.querySongs(ctx,
		fmt.Sprintf("SELECT %s FROM %s($1, $2)", songColumns, s.table("search_song_candidates")),
		query, limit)
	if err == nil {
		return songs, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.logger.Warn("candidate function failed, falling back to full scan", "err", err)

	songs, err = s.querySongs(ctx,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id LIMIT $1", songColumns, s.table("songs")),
		limit)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	return songs, nil
}

// ListSongs returns every song, newest first.
func (s *Store) ListSongs(ctx context.Context) ([]*data.Song, error) {
	return s.querySongs(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id", songColumns, s.table("songs")))
}

// GetSong returns a song by ID, or nil when there is none.
func (s *Store) GetSong(ctx context.Context, id string) (*data.Song, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", songColumns, s.table("songs")), id)
	if err != nil {
		return nil, err
	}
	song, err := pgx.CollectExactlyOneRow(rows, scanSong)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return song, err
}

// InsertSong stores song, assigning an ID when unset. The creation time
// defaults to the database clock.
func (s *Store) InsertSong(ctx context.Context, song *data.Song) (*data.Song, error) {
	out := *song
	if out.ID == "" {
		out.ID = ulid.Make().String()
	}
	if out.TwoLineUnits == nil {
		out.TwoLineUnits = []string{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	var created *time.Time
	if !out.CreatedAt.IsZero() {
		created = &out.CreatedAt
	}
	q := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
		RETURNING created_at
	`, s.table("songs"), songColumns)
	err := s.pool.QueryRow(ctx, q,
		out.ID, out.Title, out.Artist, out.ChorusFirstLine, out.Verse1FirstLine, out.TwoLineUnits,
		out.LyricsFull, out.CopyrightHolder, out.CCLINumber, out.Tags, created,
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert song %s: %w", out.ID, err)
	}
	return &out, nil
}

// LatestWeights returns the newest weight row, or nil when none is stored.
func (s *Store) LatestWeights(ctx context.Context) (*data.PartialWeights, error) {
	var (
		w       data.PartialWeights
		updated time.Time
	)
	q := fmt.Sprintf(`
		SELECT id, title_exact, title_partial, chorus_weight, verse1_weight, lyrics_weight, unit_weight, fuzzy_weight, updated_at
		FROM %s
		ORDER BY updated_at DESC
		LIMIT 1
	`, s.table("search_weight_config"))
	err := s.pool.QueryRow(ctx, q).Scan(&w.ID, &w.TitleExact, &w.TitlePartial, &w.Chorus, &w.Verse1, &w.Lyrics, &w.Unit, &w.Fuzzy, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.UpdatedAt = &updated
	return &w, nil
}

// InsertWeights appends a weight row and returns it with its ID and timestamp.
func (s *Store) InsertWeights(ctx context.Context, w data.Weights) (data.Weights, error) {
	w.ID = ulid.Make().String()
	var updated time.Time
	q := fmt.Sprintf(`
		INSERT INTO %s (id, title_exact, title_partial, chorus_weight, verse1_weight, lyrics_weight, unit_weight, fuzzy_weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING updated_at
	`, s.table("search_weight_config"))
	err := s.pool.QueryRow(ctx, q, w.ID, w.TitleExact, w.TitlePartial, w.Chorus, w.Verse1, w.Lyrics, w.Unit, w.Fuzzy).Scan(&updated)
	if err != nil {
		return data.Weights{}, fmt.Errorf("insert weights: %w", err)
	}
	w.UpdatedAt = &updated
	return w, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
