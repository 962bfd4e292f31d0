package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/dadukhankevin/Glance/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	// Timestamps are RFC 3339 with sub-second precision so created_at
	// sorts chronologically as text.
	schema := `
	CREATE TABLE IF NOT EXISTS shards (
		id               TEXT PRIMARY KEY,
		file             TEXT NOT NULL,
		from_text        TEXT NOT NULL,
		to_text          TEXT NOT NULL,
		function_hint    TEXT,
		line_start       INTEGER,
		line_end         INTEGER,
		original_content TEXT NOT NULL,
		original_hash    TEXT NOT NULL,
		summary          TEXT,
		tags             TEXT,
		stale_views      INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		last_viewed      TEXT,
		UNIQUE(file, from_text)
	);
	CREATE INDEX IF NOT EXISTS idx_shards_file ON shards(file);
	CREATE INDEX IF NOT EXISTS idx_shards_created ON shards(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const shardColumns = `id, file, from_text, to_text, function_hint, line_start, line_end,
                      original_content, original_hash, summary, tags, stale_views,
                      created_at, updated_at, last_viewed`

func (s *SQLiteStore) Upsert(ctx context.Context, p UpsertParams) (*model.Shard, bool, error) {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339Nano)

	var tagsJSON *string
	if len(p.Tags) > 0 {
		b, _ := json.Marshal(p.Tags)
		j := string(b)
		tagsJSON = &j
	}

	var hintPtr, summaryPtr *string
	if p.Anchor.FunctionHint != "" {
		hintPtr = &p.Anchor.FunctionHint
	}
	if p.Summary != "" {
		summaryPtr = &p.Summary
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	// A shard anchored at the same file+from_text is refreshed, not duplicated.
	var existingID, existingCreated string
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM shards WHERE file = ? AND from_text = ?`,
		p.File, p.Anchor.FromText).Scan(&existingID, &existingCreated)

	updated := err == nil
	id := existingID
	createdStr := existingCreated
	if !updated {
		id = s.newID()
		createdStr = nowStr
	}

	if updated {
		_, err = tx.ExecContext(ctx,
			`UPDATE shards SET to_text = ?, function_hint = ?, line_start = ?, line_end = ?,
			        original_content = ?, original_hash = ?, summary = ?, tags = ?,
			        stale_views = 0, updated_at = ?
			 WHERE id = ?`,
			p.Anchor.ToText, hintPtr, p.Anchor.LineStart, p.Anchor.LineEnd,
			p.OriginalContent, p.OriginalHash, summaryPtr, tagsJSON, nowStr, id)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO shards (id, file, from_text, to_text, function_hint, line_start, line_end,
			                     original_content, original_hash, summary, tags, stale_views,
			                     created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			id, p.File, p.Anchor.FromText, p.Anchor.ToText, hintPtr,
			p.Anchor.LineStart, p.Anchor.LineEnd,
			p.OriginalContent, p.OriginalHash, summaryPtr, tagsJSON, nowStr, nowStr)
	}
	if err != nil {
		return nil, false, fmt.Errorf("write shard: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, createdStr)
	shard := &model.Shard{
		ID:              id,
		File:            p.File,
		Anchor:          p.Anchor,
		OriginalContent: p.OriginalContent,
		OriginalHash:    p.OriginalHash,
		Summary:         p.Summary,
		Tags:            p.Tags,
		CreatedAt:       createdAt,
		UpdatedAt:       now,
	}
	return shard, updated, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Shard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shardColumns+` FROM shards WHERE id = ?`, id)

	shard, err := scanShard(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shard not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &shard, nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]model.Shard, error) {
	return s.query(ctx,
		`SELECT `+shardColumns+` FROM shards ORDER BY created_at, id`)
}

func (s *SQLiteStore) ByFile(ctx context.Context, file string) ([]model.Shard, error) {
	return s.query(ctx,
		`SELECT `+shardColumns+` FROM shards WHERE file = ? ORDER BY created_at, id`, file)
}

func (s *SQLiteStore) ByTags(ctx context.Context, tags []string) ([]model.Shard, error) {
	if len(tags) == 0 {
		return s.All(ctx)
	}

	// Tags are stored as a JSON array; any-of matching via LIKE on the
	// quoted tag.
	likes := make([]string, 0, len(tags))
	args := make([]interface{}, 0, len(tags))
	for _, tag := range tags {
		likes = append(likes, "tags LIKE ?")
		args = append(args, "%\""+tag+"\"%")
	}

	query := `SELECT ` + shardColumns + ` FROM shards WHERE ` +
		strings.Join(likes, " OR ") + ` ORDER BY created_at, id`
	return s.query(ctx, query, args...)
}

func (s *SQLiteStore) IncrementStaleViews(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE shards SET stale_views = stale_views + 1 WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) MarkViewed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, now)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE shards SET last_viewed = ? WHERE id IN (`+placeholders+`)`, args...)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shards WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLiteStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM shards WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]model.Shard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shards []model.Shard
	for rows.Next() {
		sh, err := scanShard(rows)
		if err != nil {
			return nil, err
		}
		shards = append(shards, sh)
	}
	return shards, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanShard(row scanner) (model.Shard, error) {
	var sh model.Shard
	var hint, summary, tagsJSON, lastViewed sql.NullString
	var lineStart, lineEnd sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(
		&sh.ID, &sh.File, &sh.Anchor.FromText, &sh.Anchor.ToText, &hint,
		&lineStart, &lineEnd, &sh.OriginalContent, &sh.OriginalHash,
		&summary, &tagsJSON, &sh.StaleViews, &createdAt, &updatedAt, &lastViewed,
	)
	if err != nil {
		return sh, err
	}

	sh.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sh.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if hint.Valid {
		sh.Anchor.FunctionHint = hint.String
	}
	if lineStart.Valid {
		sh.Anchor.LineStart = int(lineStart.Int64)
	}
	if lineEnd.Valid {
		sh.Anchor.LineEnd = int(lineEnd.Int64)
	}
	if summary.Valid {
		sh.Summary = summary.String
	}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &sh.Tags)
	}
	if lastViewed.Valid {
		t, _ := time.Parse(time.RFC3339Nano, lastViewed.String)
		sh.LastViewed = &t
	}

	return sh, nil
}
