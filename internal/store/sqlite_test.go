package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dadukhankevin/Glance/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func put(t *testing.T, s *SQLiteStore, file, fromText string, tags ...string) *model.Shard {
	t.Helper()
	sh, _, err := s.Upsert(context.Background(), UpsertParams{
		File: file,
		Anchor: model.Anchor{
			FromText:  fromText,
			ToText:    "return x",
			LineStart: 1,
			LineEnd:   2,
		},
		OriginalContent: fromText + "\n    return x",
		OriginalHash:    "cafe0123",
		Tags:            tags,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	return sh
}

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sh, updated, err := s.Upsert(ctx, UpsertParams{
		File: "auth.py",
		Anchor: model.Anchor{
			FromText:     "def login(user):",
			ToText:       "return token",
			FunctionHint: "login",
			LineStart:    10,
			LineEnd:      18,
		},
		OriginalContent: "def login(user):\n    return token",
		OriginalHash:    "deadbeef01234567",
		Summary:         "issues a session token",
		Tags:            []string{"auth", "session"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if updated {
		t.Error("fresh upsert should not report an update")
	}
	if sh.ID == "" {
		t.Error("expected non-empty ID")
	}
	if sh.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := s.Get(ctx, sh.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.File != "auth.py" {
		t.Errorf("file = %q, want auth.py", got.File)
	}
	if got.Anchor.FromText != "def login(user):" || got.Anchor.ToText != "return token" {
		t.Errorf("anchor did not round-trip: %+v", got.Anchor)
	}
	if got.Anchor.FunctionHint != "login" {
		t.Errorf("function hint = %q, want login", got.Anchor.FunctionHint)
	}
	if got.Anchor.LineStart != 10 || got.Anchor.LineEnd != 18 {
		t.Errorf("lines = %d-%d, want 10-18", got.Anchor.LineStart, got.Anchor.LineEnd)
	}
	if got.Summary != "issues a session token" {
		t.Errorf("summary = %q", got.Summary)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "auth" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.StaleViews != 0 {
		t.Errorf("stale views = %d, want 0", got.StaleViews)
	}
	if got.LastViewed != nil {
		t.Error("fresh shard should have no last_viewed")
	}

	if _, err := s.Get(ctx, "no-such-id"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestUpsertRefreshesInPlace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := put(t, s, "a.py", "def f():", "x")
	s.IncrementStaleViews(ctx, first.ID)

	second, updated, err := s.Upsert(ctx, UpsertParams{
		File:            "a.py",
		Anchor:          model.Anchor{FromText: "def f():", ToText: "return y"},
		OriginalContent: "def f():\n    return y",
		OriginalHash:    "beef4567",
		Summary:         "now with summary",
		Tags:            []string{"x", "y"},
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !updated {
		t.Error("expected refresh of existing shard")
	}
	if second.ID != first.ID {
		t.Errorf("id changed on refresh: %s -> %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on refresh: %v -> %v", first.CreatedAt, second.CreatedAt)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StaleViews != 0 {
		t.Errorf("refresh should reset stale views, got %d", got.StaleViews)
	}
	if got.Anchor.ToText != "return y" {
		t.Errorf("to_text = %q, want refreshed value", got.Anchor.ToText)
	}
	if got.Summary != "now with summary" {
		t.Errorf("summary = %q", got.Summary)
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags = %v", got.Tags)
	}

	// A different from_text in the same file is a new shard.
	third, updated, err := s.Upsert(ctx, UpsertParams{
		File:            "a.py",
		Anchor:          model.Anchor{FromText: "def g():", ToText: "pass"},
		OriginalContent: "def g():\n    pass",
		OriginalHash:    "0123",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if updated || third.ID == first.ID {
		t.Error("different from_text should create a new shard")
	}
}

func TestAllOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	put(t, s, "a.py", "def a():")
	put(t, s, "b.py", "def b():")
	put(t, s, "c.py", "def c():")

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 shards, got %d", len(all))
	}
	for i, want := range []string{"a.py", "b.py", "c.py"} {
		if all[i].File != want {
			t.Errorf("all[%d].File = %q, want %q", i, all[i].File, want)
		}
	}
}

func TestByFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	put(t, s, "a.py", "def a():")
	put(t, s, "a.py", "def b():")
	put(t, s, "c.py", "def c():")

	got, err := s.ByFile(ctx, "a.py")
	if err != nil {
		t.Fatalf("by file: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 shards for a.py, got %d", len(got))
	}

	none, _ := s.ByFile(ctx, "zzz.py")
	if len(none) != 0 {
		t.Errorf("expected 0 shards for unknown file, got %d", len(none))
	}
}

func TestByTagsAnyMatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	put(t, s, "a.py", "def a():", "auth")
	put(t, s, "b.py", "def b():", "db")
	put(t, s, "c.py", "def c():", "auth", "cache")
	put(t, s, "d.py", "def d():", "auth-flow")

	got, err := s.ByTags(ctx, []string{"auth"})
	if err != nil {
		t.Fatalf("by tags: %v", err)
	}
	// Whole-tag matching: auth-flow must not match auth.
	if len(got) != 2 {
		t.Errorf("expected 2 shards tagged auth, got %d", len(got))
	}

	any, _ := s.ByTags(ctx, []string{"auth", "db"})
	if len(any) != 3 {
		t.Errorf("expected 3 shards for auth|db, got %d", len(any))
	}

	none, _ := s.ByTags(ctx, []string{"ghost"})
	if len(none) != 0 {
		t.Errorf("expected 0 shards for unknown tag, got %d", len(none))
	}

	all, _ := s.ByTags(ctx, nil)
	if len(all) != 4 {
		t.Errorf("empty tag filter should return everything, got %d", len(all))
	}
}

func TestMarkViewedAndIncrement(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := put(t, s, "a.py", "def a():")
	b := put(t, s, "b.py", "def b():")

	if err := s.MarkViewed(ctx, []string{a.ID, b.ID}); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	got, _ := s.Get(ctx, a.ID)
	if got.LastViewed == nil {
		t.Error("expected last_viewed to be stamped")
	}

	if err := s.MarkViewed(ctx, nil); err != nil {
		t.Errorf("empty mark viewed should be a no-op, got %v", err)
	}

	s.IncrementStaleViews(ctx, a.ID)
	s.IncrementStaleViews(ctx, a.ID)
	got, _ = s.Get(ctx, a.ID)
	if got.StaleViews != 2 {
		t.Errorf("stale views = %d, want 2", got.StaleViews)
	}
}

func TestDeleteAndDeleteMany(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := put(t, s, "a.py", "def a():")
	b := put(t, s, "b.py", "def b():")
	c := put(t, s, "c.py", "def c():")

	deleted, err := s.Delete(ctx, a.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report success")
	}
	deleted, _ = s.Delete(ctx, a.ID)
	if deleted {
		t.Error("second delete should report not found")
	}

	n, err := s.DeleteMany(ctx, []string{b.ID, c.ID, "missing"})
	if err != nil {
		t.Fatalf("delete many: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}

	n, _ = s.DeleteMany(ctx, nil)
	if n != 0 {
		t.Errorf("empty delete many removed %d", n)
	}

	all, _ := s.All(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty store, got %d shards", len(all))
	}
}

func TestTagsRankedByActivity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	put(t, s, "a.py", "def a():", "auth")
	put(t, s, "b.py", "def b():", "db")
	put(t, s, "c.py", "def c():", "auth")

	// Viewing the db shard makes db the most recently active tag.
	dbShards, _ := s.ByTags(ctx, []string{"db"})
	s.MarkViewed(ctx, []string{dbShards[0].ID})

	infos, err := s.Tags(ctx)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(infos))
	}
	if infos[0].Tag != "db" {
		t.Errorf("most active tag = %q, want db", infos[0].Tag)
	}
	if infos[1].Tag != "auth" || infos[1].ShardCount != 2 {
		t.Errorf("infos[1] = %+v, want auth with 2 shards", infos[1])
	}
}

func TestRemoveTag(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	only := put(t, s, "a.py", "def a():", "temp")
	both := put(t, s, "b.py", "def b():", "temp", "keep")

	modified, orphans, err := s.RemoveTag(ctx, "temp")
	if err != nil {
		t.Fatalf("remove tag: %v", err)
	}
	if modified != 2 {
		t.Errorf("modified = %d, want 2", modified)
	}
	if orphans != 1 {
		t.Errorf("orphans = %d, want 1", orphans)
	}

	if _, err := s.Get(ctx, only.ID); err == nil {
		t.Error("shard left untagged should be deleted")
	}
	kept, err := s.Get(ctx, both.ID)
	if err != nil {
		t.Fatalf("get survivor: %v", err)
	}
	if len(kept.Tags) != 1 || kept.Tags[0] != "keep" {
		t.Errorf("tags = %v, want [keep]", kept.Tags)
	}

	modified, orphans, err = s.RemoveTag(ctx, "ghost")
	if err != nil {
		t.Fatalf("remove unknown tag: %v", err)
	}
	if modified != 0 || orphans != 0 {
		t.Errorf("unknown tag modified=%d orphans=%d, want 0 0", modified, orphans)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	put(t, s, "a.py", "def a():", "auth")
	put(t, s, "a.py", "def b():")
	summarized, _, err := s.Upsert(ctx, UpsertParams{
		File:            "b.py",
		Anchor:          model.Anchor{FromText: "def c():", ToText: "return"},
		OriginalContent: "def c():\n    return",
		OriginalHash:    "ff00",
		Summary:         "does things",
		Tags:            []string{"db"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.IncrementStaleViews(ctx, summarized.ID)

	stats, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalShards != 3 {
		t.Errorf("total = %d, want 3", stats.TotalShards)
	}
	if stats.WithSummary != 1 {
		t.Errorf("with summary = %d, want 1", stats.WithSummary)
	}
	if stats.FlaggedStale != 1 {
		t.Errorf("flagged stale = %d, want 1", stats.FlaggedStale)
	}
	if stats.TagCount != 2 {
		t.Errorf("tag count = %d, want 2", stats.TagCount)
	}
	if stats.DBSizeBytes <= 0 {
		t.Error("expected positive db size")
	}
	if len(stats.Files) != 2 || stats.Files[0].File != "a.py" || stats.Files[0].Count != 2 {
		t.Errorf("files = %+v", stats.Files)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	put(t, src, "b.py", "def b():", "x")
	_, _, err := src.Upsert(ctx, UpsertParams{
		File:            "a.py",
		Anchor:          model.Anchor{FromText: "def a():", ToText: "return 1"},
		OriginalContent: "def a():\n    return 1",
		OriginalHash:    "aa11",
		Summary:         "returns one",
		Tags:            []string{"math"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	exported, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("exported %d shards, want 2", len(exported))
	}
	// Export order is by file, not creation.
	if exported[0].File != "a.py" {
		t.Errorf("exported[0].File = %q, want a.py", exported[0].File)
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}

	restored, err := dst.ByFile(ctx, "a.py")
	if err != nil || len(restored) != 1 {
		t.Fatalf("restored = %v, err = %v", restored, err)
	}
	if restored[0].Summary != "returns one" {
		t.Errorf("summary = %q, want preserved", restored[0].Summary)
	}
	if restored[0].OriginalHash != "aa11" {
		t.Errorf("hash = %q, want preserved", restored[0].OriginalHash)
	}
}
