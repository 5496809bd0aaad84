// Package history keeps a SQLite ledger of conversions and per-chapter
// results. The ledger backs "aaxconv history" and lets --resume pick up a
// split at the chapter after the last one that succeeded.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const (
	tableConversions = "conversions"
	tableChapters    = "chapter_results"
)

// Store is the ledger handle.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the ledger at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin inserts a running conversion row and returns its id.
func (s *Store) Begin(ctx context.Context, c Conversion) (int64, error) {
	started := c.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	query, args, err := squirrel.
		Insert(tableConversions).
		Columns("run_id", "source_path", "output_dir", "title", "codec", "mode", "status", "started_at").
		Values(c.RunID, c.SourcePath, c.OutputDir, c.Title, c.Codec, c.Mode, StatusRunning, formatTime(started)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Plan records where a conversion writes and how many chapters it has.
func (s *Store) Plan(ctx context.Context, id int64, title, outputDir string, chapters int) error {
	return s.update(ctx, id, map[string]any{
		"title":          title,
		"output_dir":     outputDir,
		"chapters_total": chapters,
	})
}

// RecordChapter upserts one chapter result.
func (s *Store) RecordChapter(ctx context.Context, r ChapterResult) error {
	query, args, err := squirrel.
		Insert(tableChapters).
		Columns("conversion_id", "chapter_num", "path", "status", "error").
		Values(r.ConversionID, r.ChapterNum, r.Path, r.Status, nullableString(r.Error)).
		Suffix("ON CONFLICT(conversion_id, chapter_num) DO UPDATE SET path = excluded.path, status = excluded.status, error = excluded.error").
		ToSql()
	if err != nil {
		return fmt.Errorf("build chapter insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record chapter %d: %w", r.ChapterNum, err)
	}
	return nil
}

// Finish closes a conversion row with its outcome.
func (s *Store) Finish(ctx context.Context, id int64, c Completion) error {
	return s.update(ctx, id, map[string]any{
		"status":           c.Status,
		"error":            nullableString(c.Error),
		"duration_seconds": c.Elapsed.Seconds(),
		"finished_at":      formatTime(time.Now()),
	})
}

// ResumePoint returns the chapter ordinal to resume from for source written
// into outputDir: one past the highest chapter that succeeded since the last
// completed conversion of that pair. It returns 1 when there is nothing to
// resume.
func (s *Store) ResumePoint(ctx context.Context, source, outputDir string) (int, error) {
	lastDone := squirrel.
		Select("COALESCE(MAX(id), 0)").
		From(tableConversions).
		Where(squirrel.Eq{"source_path": source, "output_dir": outputDir, "status": StatusDone})
	lastDoneSQL, lastDoneArgs, err := lastDone.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build resume subquery: %w", err)
	}

	query, args, err := squirrel.
		Select("MAX(cr.chapter_num)").
		From(tableChapters + " cr").
		Join(tableConversions + " c ON c.id = cr.conversion_id").
		Where(squirrel.Eq{"c.source_path": source, "c.output_dir": outputDir, "cr.status": ChapterDone}).
		Where("c.id > ("+lastDoneSQL+")", lastDoneArgs...).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build resume query: %w", err)
	}

	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return 0, fmt.Errorf("query resume point: %w", err)
	}
	if !last.Valid {
		return 1, nil
	}
	return int(last.Int64) + 1, nil
}

// Recent returns up to limit conversions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Conversion, error) {
	builder := squirrel.
		Select("id", "run_id", "source_path", "output_dir", "title", "codec", "mode", "status",
			"error", "duration_seconds", "chapters_total", "started_at", "finished_at").
		From(tableConversions).
		OrderBy("id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var (
			c        Conversion
			errText  sql.NullString
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.RunID, &c.SourcePath, &c.OutputDir, &c.Title, &c.Codec, &c.Mode,
			&c.Status, &errText, &c.DurationSeconds, &c.ChaptersTotal, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		c.Error = errText.String
		c.StartedAt = parseTime(started)
		if finished.Valid {
			c.FinishedAt = parseTime(finished.String)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return out, nil
}

// Chapters returns the chapter results of one conversion in order.
func (s *Store) Chapters(ctx context.Context, conversionID int64) ([]ChapterResult, error) {
	query, args, err := squirrel.
		Select("conversion_id", "chapter_num", "path", "status", "error").
		From(tableChapters).
		Where(squirrel.Eq{"conversion_id": conversionID}).
		OrderBy("chapter_num").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build chapters query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var out []ChapterResult
	for rows.Next() {
		var (
			r       ChapterResult
			errText sql.NullString
		)
		if err := rows.Scan(&r.ConversionID, &r.ChapterNum, &r.Path, &r.Status, &errText); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		r.Error = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) update(ctx context.Context, id int64, values map[string]any) error {
	query, args, err := squirrel.
		Update(tableConversions).
		SetMap(values).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update conversion %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update conversion %d: no such row", id)
	}
	return nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
