// Package store provides the shard storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/dadukhankevin/Glance/internal/model"
)

// UpsertParams holds parameters for creating or refreshing a shard.
type UpsertParams struct {
	File            string
	Anchor          model.Anchor
	OriginalContent string
	OriginalHash    string
	Summary         string
	Tags            []string
}

// Store defines the shard storage interface.
type Store interface {
	// Upsert stores a shard. A shard already anchored at the same
	// file+FromText is refreshed in place, keeping its id and creation
	// time and resetting its stale view count. The bool reports whether
	// an existing shard was refreshed.
	Upsert(ctx context.Context, p UpsertParams) (*model.Shard, bool, error)

	// Get retrieves a shard by id.
	Get(ctx context.Context, id string) (*model.Shard, error)

	// All returns every shard, oldest first.
	All(ctx context.Context) ([]model.Shard, error)

	// ByFile returns the shards anchored in the given file, oldest first.
	ByFile(ctx context.Context, file string) ([]model.Shard, error)

	// ByTags returns the shards carrying any of the given tags, oldest
	// first. Empty tags means all shards.
	ByTags(ctx context.Context, tags []string) ([]model.Shard, error)

	// IncrementStaleViews bumps a shard's stale view counter.
	IncrementStaleViews(ctx context.Context, id string) error

	// MarkViewed stamps last_viewed on the given shards.
	MarkViewed(ctx context.Context, ids []string) error

	// Delete removes a shard. Reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteMany removes several shards. Returns the count removed.
	DeleteMany(ctx context.Context, ids []string) (int, error)

	// Close closes the store.
	Close() error
}
