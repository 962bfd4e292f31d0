package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"
)

// TagInfo summarizes one tag across the store.
type TagInfo struct {
	Tag          string    `json:"tag"`
	ShardCount   int       `json:"shard_count"`
	LastActivity time.Time `json:"last_activity"`
}

// Tags aggregates every tag with its shard count and most recent activity,
// most recently active first. Activity is a shard's last view, falling
// back to its last update for shards never viewed.
func (s *SQLiteStore) Tags(ctx context.Context) ([]TagInfo, error) {
	shards, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	type agg struct {
		count  int
		latest time.Time
	}
	byTag := map[string]*agg{}
	for _, sh := range shards {
		activity := sh.UpdatedAt
		if sh.LastViewed != nil {
			activity = *sh.LastViewed
		}
		for _, tag := range sh.Tags {
			a := byTag[tag]
			if a == nil {
				a = &agg{}
				byTag[tag] = a
			}
			a.count++
			if activity.After(a.latest) {
				a.latest = activity
			}
		}
	}

	infos := make([]TagInfo, 0, len(byTag))
	for tag, a := range byTag {
		infos = append(infos, TagInfo{Tag: tag, ShardCount: a.count, LastActivity: a.latest})
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].LastActivity.Equal(infos[j].LastActivity) {
			return infos[i].LastActivity.After(infos[j].LastActivity)
		}
		return infos[i].Tag < infos[j].Tag
	})

	return infos, nil
}

// RemoveTag strips the tag from every shard carrying it. Shards left with
// no tags at all are deleted. Returns how many shards were modified and
// how many of those were removed as orphans.
func (s *SQLiteStore) RemoveTag(ctx context.Context, tag string) (int, int, error) {
	shards, err := s.ByTags(ctx, []string{tag})
	if err != nil {
		return 0, 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	modified, orphans := 0, 0
	for _, sh := range shards {
		var kept []string
		for _, t := range sh.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(sh.Tags) {
			continue
		}
		modified++

		if len(kept) == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM shards WHERE id = ?`, sh.ID); err != nil {
				return 0, 0, err
			}
			orphans++
			continue
		}

		b, _ := json.Marshal(kept)
		_, err := tx.ExecContext(ctx,
			`UPDATE shards SET tags = ?, updated_at = ? WHERE id = ?`, string(b), now, sh.ID)
		if err != nil {
			return 0, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return modified, orphans, nil
}
