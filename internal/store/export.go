package store

import (
	"context"

	"github.com/dadukhankevin/Glance/internal/model"
)

// ExportAll returns every shard in a stable order for export.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Shard, error) {
	return s.query(ctx,
		`SELECT `+shardColumns+` FROM shards ORDER BY file, from_text`)
}

// Import stores shards from an export. Each shard re-enters through the
// upsert key, so importing over an existing store refreshes matching
// shards in place with the exported capture.
func (s *SQLiteStore) Import(ctx context.Context, shards []model.Shard) (int, error) {
	imported := 0
	for _, sh := range shards {
		_, _, err := s.Upsert(ctx, UpsertParams{
			File:            sh.File,
			Anchor:          sh.Anchor,
			OriginalContent: sh.OriginalContent,
			OriginalHash:    sh.OriginalHash,
			Summary:         sh.Summary,
			Tags:            sh.Tags,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
