package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string      `json:"db_path"`
	DBSizeBytes  int64       `json:"db_size_bytes"`
	TotalShards  int         `json:"total_shards"`
	WithSummary  int         `json:"with_summary"`
	FlaggedStale int         `json:"flagged_stale"`
	TagCount     int         `json:"tag_count"`
	Files        []FileStats `json:"files"`
}

// FileStats holds per-file shard counts.
type FileStats struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shards`).Scan(&st.TotalShards)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shards WHERE summary IS NOT NULL`).Scan(&st.WithSummary)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shards WHERE stale_views > 0`).Scan(&st.FlaggedStale)

	tags, err := s.Tags(ctx)
	if err != nil {
		return st, err
	}
	st.TagCount = len(tags)

	rows, err := s.db.QueryContext(ctx, `
		SELECT file, COUNT(*) as cnt
		FROM shards
		GROUP BY file ORDER BY cnt DESC, file`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var fs FileStats
		rows.Scan(&fs.File, &fs.Count)
		st.Files = append(st.Files, fs)
	}

	return st, rows.Err()
}
