// Package shards orchestrates shard operations: capture, drift-aware
// viewing, and tag maintenance. It glues the store to the resolution and
// health engines and owns the lifecycle rules (stale flagging, expiry
// deletion) that the pure engines only signal.
package shards

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dadukhankevin/Glance/internal/config"
	"github.com/dadukhankevin/Glance/internal/health"
	"github.com/dadukhankevin/Glance/internal/model"
	"github.com/dadukhankevin/Glance/internal/resolve"
	"github.com/dadukhankevin/Glance/internal/store"
)

// Service wires the shard store to the resolution and health engines.
type Service struct {
	store *store.SQLiteStore
	cfg   *config.Config
}

// NewService creates a Service over the given store and settings.
func NewService(st *store.SQLiteStore, cfg *config.Config) *Service {
	return &Service{store: st, cfg: cfg}
}

// CreateParams holds parameters for capturing a shard.
type CreateParams struct {
	File         string
	FromText     string
	ToText       string
	FunctionHint string
	Summary      string
	Tags         []string
}

// CreateResult reports a successful capture.
type CreateResult struct {
	Action     string   `json:"action"`
	ShardID    string   `json:"shard_id"`
	File       string   `json:"file"`
	Lines      string   `json:"lines"`
	Tags       []string `json:"tags,omitempty"`
	HasSummary bool     `json:"has_summary"`
	Construct  string   `json:"construct,omitempty"`
}

// Create resolves the anchored region in the live file and captures it as
// a shard. Re-creating a shard for the same file+FromText refreshes it in
// place, which also resets its health bookkeeping.
func (s *Service) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	text, ok := s.readFile(p.File)
	if !ok {
		return nil, fmt.Errorf("file not found: %s", p.File)
	}

	anchor := model.Anchor{
		FromText:     p.FromText,
		ToText:       p.ToText,
		FunctionHint: p.FunctionHint,
	}
	region := resolve.Resolve(text, anchor, s.cfg.ResolveOptions())
	if region == nil {
		return nil, fmt.Errorf("could not find region in %s: make sure from_text (%q) appears in the file",
			p.File, truncate(p.FromText, 50))
	}

	anchor.FunctionHint = region.Construct
	anchor.LineStart = region.StartLine
	anchor.LineEnd = region.EndLine

	shard, updated, err := s.store.Upsert(ctx, store.UpsertParams{
		File:            p.File,
		Anchor:          anchor,
		OriginalContent: region.Content,
		OriginalHash:    health.Fingerprint(region.Content),
		Summary:         p.Summary,
		Tags:            p.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("store shard: %w", err)
	}

	action := "created"
	if updated {
		action = "updated"
	}
	return &CreateResult{
		Action:     action,
		ShardID:    shard.ID,
		File:       p.File,
		Lines:      fmt.Sprintf("%d-%d", region.StartLine, region.EndLine),
		Tags:       p.Tags,
		HasSummary: p.Summary != "",
		Construct:  region.Construct,
	}, nil
}

// ViewParams filter and shape a view pass.
type ViewParams struct {
	Tags   []string
	File   string
	Raw    bool
	Limit  int // 0 means the configured default
	Offset int
}

// ViewEntry is one shard in a view response, carrying either the trusted
// summary or the live content plus the health verdict.
type ViewEntry struct {
	ShardID        string         `json:"shard_id"`
	File           string         `json:"file"`
	Tags           []string       `json:"tags,omitempty"`
	Health         health.Verdict `json:"health"`
	Lines          string         `json:"lines,omitempty"`
	Summary        string         `json:"summary,omitempty"`
	Content        string         `json:"content,omitempty"`
	Note           string         `json:"note,omitempty"`
	Tip            string         `json:"tip,omitempty"`
	ActionRequired string         `json:"action_required,omitempty"`

	// Original and Live carry the captured and currently resolved region
	// text for drift display. They never travel in JSON payloads.
	Original string `json:"-"`
	Live     string `json:"-"`
}

// ViewResult is the outcome of one view pass.
type ViewResult struct {
	Shards    []ViewEntry `json:"shards"`
	Count     int         `json:"count"`
	Total     int         `json:"total"`
	More      string      `json:"more,omitempty"`
	Attention string      `json:"attention,omitempty"`
	Deleted   string      `json:"deleted,omitempty"`
}

// View resolves and assesses the matching shards, oldest first. Healthy
// shards show their summary unless Raw is set; anything less trusted shows
// live content. Viewing has consequences: stale shards get their counter
// bumped, expired and broken shards are deleted, and survivors get their
// last view stamped.
func (s *Service) View(ctx context.Context, p ViewParams) (*ViewResult, error) {
	matched, err := s.gather(ctx, p)
	if err != nil {
		return nil, err
	}

	limit := p.Limit
	if limit <= 0 {
		limit = s.cfg.View.Limit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(matched)
	page := matched
	if offset > 0 {
		if offset >= len(page) {
			page = nil
		} else {
			page = page[offset:]
		}
	}
	if len(page) > limit {
		page = page[:limit]
	}

	result := &ViewResult{Total: total}
	var flagged, deleteNow []string

	for i := range page {
		sh := &page[i]
		entry := ViewEntry{ShardID: sh.ID, File: sh.File, Tags: sh.Tags}

		var current string
		resolved := false
		if text, ok := s.readFile(sh.File); ok {
			if region := resolve.Resolve(text, sh.Anchor, s.cfg.ResolveOptions()); region != nil {
				current = region.Content
				resolved = true
				entry.Lines = fmt.Sprintf("%d-%d", region.StartLine, region.EndLine)
			}
		}

		verdict := health.Assess(sh, current, resolved, s.cfg.Thresholds())
		entry.Health = verdict

		liveContent := current
		if !resolved {
			liveContent = "[Could not resolve]"
		}
		entry.Original = sh.OriginalContent
		entry.Live = liveContent

		if p.Raw || !verdict.TrustSummary() {
			entry.Content = liveContent
			if sh.Summary != "" && !p.Raw {
				entry.Note = "Summary bypassed due to low health, showing raw content"
			}
			if sh.Summary == "" && (verdict.Status == health.StatusDegraded || verdict.Status == health.StatusStale) {
				entry.Tip = "This shard has no summary and the code has changed. " +
					"Re-create it to refresh, and consider adding a summary."
			}
		} else if sh.Summary != "" {
			entry.Summary = sh.Summary
		} else {
			entry.Content = liveContent
			entry.Tip = "This shard has no summary. Consider re-creating it with one " +
				"to save context in future sessions."
		}

		switch {
		case verdict.DeleteNow():
			deleteNow = append(deleteNow, sh.ID)
			entry.ActionRequired = "This shard has expired and will be deleted."
		case verdict.FlagForDeletion():
			flagged = append(flagged, sh.ID)
			if err := s.store.IncrementStaleViews(ctx, sh.ID); err != nil {
				return nil, err
			}
		}

		result.Shards = append(result.Shards, entry)
	}

	// Last-viewed is stamped for everything shown except shards that are
	// being removed right now.
	doomed := make(map[string]bool, len(deleteNow))
	for _, id := range deleteNow {
		doomed[id] = true
	}
	var viewed []string
	for i := range page {
		if !doomed[page[i].ID] {
			viewed = append(viewed, page[i].ID)
		}
	}
	if len(viewed) > 0 {
		if err := s.store.MarkViewed(ctx, viewed); err != nil {
			return nil, err
		}
	}
	if len(deleteNow) > 0 {
		if _, err := s.store.DeleteMany(ctx, deleteNow); err != nil {
			return nil, err
		}
	}

	result.Count = len(result.Shards)
	if total > offset+limit {
		remaining := total - (offset + limit)
		result.More = fmt.Sprintf("%d older shard(s) not shown. Repeat the view with offset=%d to see more.",
			remaining, offset+limit)
	}
	if len(flagged) > 0 {
		result.Attention = fmt.Sprintf("Shards %s have low confidence and will be deleted soon "+
			"unless re-created. View them with raw=true to inspect their current content.",
			strings.Join(flagged, ", "))
	}
	if len(deleteNow) > 0 {
		result.Deleted = fmt.Sprintf("Shards %s were expired and have been deleted. "+
			"Re-explore those areas and create new shards if still needed.",
			strings.Join(deleteNow, ", "))
	}

	return result, nil
}

// gather collects the shards matching the view filters, oldest first.
func (s *Service) gather(ctx context.Context, p ViewParams) ([]model.Shard, error) {
	if len(p.Tags) > 0 {
		matched, err := s.store.ByTags(ctx, p.Tags)
		if err != nil {
			return nil, err
		}
		if p.File == "" {
			return matched, nil
		}
		resolved := s.resolvePath(p.File)
		kept := matched[:0]
		for _, sh := range matched {
			if sh.File == p.File || s.resolvePath(sh.File) == resolved {
				kept = append(kept, sh)
			}
		}
		return kept, nil
	}

	if p.File != "" {
		matched, err := s.store.ByFile(ctx, p.File)
		if err != nil || len(matched) > 0 {
			return matched, err
		}
		// The stored path form may differ from the query's; fall back to
		// comparing resolved paths.
		all, err := s.store.All(ctx)
		if err != nil {
			return nil, err
		}
		resolved := s.resolvePath(p.File)
		var kept []model.Shard
		for _, sh := range all {
			if s.resolvePath(sh.File) == resolved {
				kept = append(kept, sh)
			}
		}
		return kept, nil
	}

	return s.store.All(ctx)
}

// TagMatch is one tag search result.
type TagMatch struct {
	Tag        string `json:"tag"`
	ShardCount int    `json:"shard_count"`
}

// SearchTags finds tags matching query as a case-insensitive substring.
// Exact matches rank first, then prefixes, then substrings, with ties
// broken by descending shard count. Limit <= 0 means the default of 5.
func (s *Service) SearchTags(ctx context.Context, query string, limit int) ([]TagMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	infos, err := s.store.Tags(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	type scoredMatch struct {
		rank int
		TagMatch
	}
	var matches []scoredMatch
	for _, info := range infos {
		tag := strings.ToLower(info.Tag)
		if !strings.Contains(tag, q) {
			continue
		}
		rank := 2
		switch {
		case tag == q:
			rank = 0
		case strings.HasPrefix(tag, q):
			rank = 1
		}
		matches = append(matches, scoredMatch{rank, TagMatch{Tag: info.Tag, ShardCount: info.ShardCount}})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].ShardCount > matches[j].ShardCount
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]TagMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.TagMatch)
	}
	return out, nil
}

// DeleteTagResult reports a tag removal.
type DeleteTagResult struct {
	Tag            string `json:"tag"`
	ShardsModified int    `json:"shards_modified"`
	OrphansDeleted int    `json:"orphans_deleted"`
}

// DeleteTag removes the tag everywhere; shards left untagged are deleted.
func (s *Service) DeleteTag(ctx context.Context, tag string) (*DeleteTagResult, error) {
	modified, orphans, err := s.store.RemoveTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	return &DeleteTagResult{Tag: tag, ShardsModified: modified, OrphansDeleted: orphans}, nil
}

// Stats reports store statistics for the database at dbPath.
func (s *Service) Stats(ctx context.Context, dbPath string) (*store.Stats, error) {
	return s.store.Stats(ctx, dbPath)
}

// TopTags returns up to n tags ranked by most recent activity.
func (s *Service) TopTags(ctx context.Context, n int) ([]store.TagInfo, error) {
	infos, err := s.store.Tags(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) > n {
		infos = infos[:n]
	}
	return infos, nil
}

// resolvePath anchors relative shard paths at the configured project root.
func (s *Service) resolvePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	root, err := filepath.Abs(s.cfg.ProjectRoot)
	if err != nil {
		root = s.cfg.ProjectRoot
	}
	return filepath.Join(root, file)
}

// readFile loads a source file as LF-normalized text. ok=false when the
// file is missing, unreadable, or not valid UTF-8.
func (s *Service) readFile(file string) (string, bool) {
	data, err := os.ReadFile(s.resolvePath(file))
	if err != nil {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
