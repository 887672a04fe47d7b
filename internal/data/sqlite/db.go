package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/textnorm"

	_ "modernc.org/sqlite"
)

// timeLayout keeps fixed-width timestamps so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// maxQueryTokens bounds the LIKE prefilter built for one query.
const maxQueryTokens = 8

const songColumns = "id, title, artist, chorus_first_line, verse1_first_line, two_line_units, lyrics_full, copyright_holder, ccli_number, tags, created_at"

// DB implements data.DataSource using SQLite.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens a SQLite database at the given path (file path or ":memory:").
// The schema is applied if missing, so a new file is usable immediately.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DB returns the underlying *sql.DB for use with packages that need it (e.g. canonical import).
func (db *DB) DB() *sql.DB {
	return db.conn
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(r rowScanner) (*data.Song, error) {
	var (
		s                            data.Song
		artist, lyrics, holder, ccli sql.NullString
		units, tags, created         string
	)
	if err := r.Scan(&s.ID, &s.Title, &artist, &s.ChorusFirstLine, &s.Verse1FirstLine, &units, &lyrics, &holder, &ccli, &tags, &created); err != nil {
		return nil, err
	}
	s.Artist = nullString(artist)
	s.LyricsFull = nullString(lyrics)
	s.CopyrightHolder = nullString(holder)
	s.CCLINumber = nullString(ccli)
	// Malformed JSON is treated as an empty list.
	if err := json.Unmarshal([]byte(units), &s.TwoLineUnits); err != nil {
		s.TwoLineUnits = nil
	}
	if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
		s.Tags = nil
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		s.CreatedAt = t
	}
	return &s, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func scanSongs(rows *sql.Rows) ([]*data.Song, error) {
	defer rows.Close()
	var out []*data.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SearchCandidates returns up to limit songs. Songs with any query word in
// a searchable column come first, then the newest of the rest, so fuzzy
// title matches that share no word with the query still reach the ranker.
func (db *DB) SearchCandidates(ctx context.Context, query string, limit int) ([]*data.Song, error) {
	tokens := textnorm.Tokens(textnorm.Normalize(query))
	if len(tokens) > maxQueryTokens {
		tokens = tokens[:maxQueryTokens]
	}
	var (
		where []string
		args  []any
	)
	for _, tok := range tokens {
		pat := "%" + escapeLike(tok) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR chorus_first_line LIKE ? ESCAPE '\' OR verse1_first_line LIKE ? ESCAPE '\' OR lyrics_full LIKE ? ESCAPE '\' OR two_line_units LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat, pat, pat, pat)
	}
	q := "SELECT " + songColumns + " FROM songs ORDER BY "
	if len(where) > 0 {
		q += "CASE WHEN " + strings.Join(where, " OR ") + " THEN 0 ELSE 1 END, "
	}
	q += "created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	return scanSongs(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListSongs returns every song, newest first.
func (db *DB) ListSongs(ctx context.Context) ([]*data.Song, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT "+songColumns+" FROM songs ORDER BY created_at DESC, id")
	if err != nil {
		return nil, err
	}
	return scanSongs(rows)
}

// GetSong returns a song by ID, or nil when there is none.
func (db *DB) GetSong(ctx context.Context, id string) (*data.Song, error) {
	s, err := scanSong(db.conn.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// InsertSong stores song, assigning an ID and creation time when unset, and
// returns the stored record.
func (db *DB) InsertSong(ctx context.Context, song *data.Song) (*data.Song, error) {
	s := *song
	if s.ID == "" {
		s.ID = ulid.Make().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = db.now().UTC()
	}
	if s.TwoLineUnits == nil {
		s.TwoLineUnits = []string{}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	units, err := marshalList(s.TwoLineUnits)
	if err != nil {
		return nil, err
	}
	tags, err := marshalList(s.Tags)
	if err != nil {
		return nil, err
	}
	_, err = db.conn.ExecContext(ctx,
		"INSERT INTO songs ("+songColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.ID, s.Title, s.Artist, s.ChorusFirstLine, s.Verse1FirstLine, units, s.LyricsFull,
		s.CopyrightHolder, s.CCLINumber, tags, s.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert song %s: %w", s.ID, err)
	}
	return &s, nil
}

// marshalList encodes without HTML escaping so LIKE patterns match stored text.
func marshalList(v []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// LatestWeights returns the newest weight row, or nil when none is stored.
func (db *DB) LatestWeights(ctx context.Context) (*data.PartialWeights, error) {
	var (
		w                                           data.PartialWeights
		te, tp, chorus, verse1, lyrics, unit, fuzzy sql.NullFloat64
		updated                                     string
	)
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, title_exact, title_partial, chorus_weight, verse1_weight, lyrics_weight, unit_weight, fuzzy_weight, updated_at FROM search_weight_config ORDER BY updated_at DESC, rowid DESC LIMIT 1").
		Scan(&w.ID, &te, &tp, &chorus, &verse1, &lyrics, &unit, &fuzzy, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.TitleExact = nullFloat(te)
	w.TitlePartial = nullFloat(tp)
	w.Chorus = nullFloat(chorus)
	w.Verse1 = nullFloat(verse1)
	w.Lyrics = nullFloat(lyrics)
	w.Unit = nullFloat(unit)
	w.Fuzzy = nullFloat(fuzzy)
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		w.UpdatedAt = &t
	}
	return &w, nil
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// InsertWeights appends a weight row and returns it with its ID and timestamp.
func (db *DB) InsertWeights(ctx context.Context, w data.Weights) (data.Weights, error) {
	w.ID = ulid.Make().String()
	now := db.now().UTC()
	w.UpdatedAt = &now
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO search_weight_config (id, title_exact, title_partial, chorus_weight, verse1_weight, lyrics_weight, unit_weight, fuzzy_weight, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		w.ID, w.TitleExact, w.TitlePartial, w.Chorus, w.Verse1, w.Lyrics, w.Unit, w.Fuzzy, now.Format(timeLayout))
	if err != nil {
		return data.Weights{}, fmt.Errorf("insert weights: %w", err)
	}
	return w, nil
}

var _ data.DataSource = (*DB)(nil)
