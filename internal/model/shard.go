// Package model defines the core shard data types.
package model

import "time"

// Anchor describes how a shard is pinned inside a file. FromText and
// ToText are the first and last lines of the region as captured; they are
// matched as whitespace-tolerant substrings when the shard is resolved
// again. LineStart and LineEnd record where the region sat at capture
// time and are display hints only.
type Anchor struct {
	FromText     string `json:"from_text"`
	ToText       string `json:"to_text"`
	FunctionHint string `json:"function_hint,omitempty"`
	LineStart    int    `json:"line_start,omitempty"`
	LineEnd      int    `json:"line_end,omitempty"`
}

// Shard represents a bookmarked code region: the anchor to find it again,
// the content and hash captured at creation, and view bookkeeping.
type Shard struct {
	ID              string     `json:"id"`
	File            string     `json:"file"`
	Anchor          Anchor     `json:"anchor"`
	OriginalContent string     `json:"original_content"`
	OriginalHash    string     `json:"original_hash"`
	Summary         string     `json:"summary,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	StaleViews      int        `json:"stale_views"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastViewed      *time.Time `json:"last_viewed,omitempty"`
}
