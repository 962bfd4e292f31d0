// Package health scores shard drift and classifies the result.
package health

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/dadukhankevin/Glance/internal/model"
)

// Status classifies how trustworthy a shard's captured state still is.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusStale    Status = "stale"
	StatusExpired  Status = "expired"
	StatusBroken   Status = "broken"
)

// Thresholds are the score cut-offs for the verdict state machine.
type Thresholds struct {
	// Healthy is the score at or above which the stored summary is
	// still trusted.
	Healthy float64
	// Stale is the score below which a shard is considered rewritten.
	Stale float64
	// MaxStaleViews is how many times a rewritten shard may be viewed
	// before it expires.
	MaxStaleViews int
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{Healthy: 0.8, Stale: 0.4, MaxStaleViews: 2}
}

// Verdict is the assessed health of one shard against live file content.
type Verdict struct {
	Score   float64 `json:"score"`
	Status  Status  `json:"status"`
	Message string  `json:"message"`
}

// TrustSummary reports whether the stored summary still describes the code.
func (v Verdict) TrustSummary() bool {
	return v.Status == StatusHealthy
}

// FlagForDeletion reports whether the agent should be warned the shard is dying.
func (v Verdict) FlagForDeletion() bool {
	return v.Status == StatusStale || v.Status == StatusExpired || v.Status == StatusBroken
}

// DeleteNow reports whether the shard should actually be removed.
func (v Verdict) DeleteNow() bool {
	return v.Status == StatusExpired || v.Status == StatusBroken
}

// Normalize strips whitespace noise before comparison: lines are trimmed
// and blank lines dropped, so reformatting alone is not drift.
func Normalize(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Score measures how similar current is to original, in [0, 1]:
// 1.0 identical, 0.99 identical up to whitespace, 0.0 when either side is
// empty, otherwise a character-level difflib ratio of the normalized
// texts rounded to 3 decimals.
func Score(original, current string) float64 {
	if original == current {
		return 1.0
	}
	if original == "" || current == "" {
		return 0.0
	}

	origNorm := Normalize(original)
	currNorm := Normalize(current)
	if origNorm == currNorm {
		return 0.99
	}

	m := difflib.NewMatcher(chars(origNorm), chars(currNorm))
	return math.Round(m.Ratio()*1000) / 1000
}

func chars(s string) []string {
	return strings.Split(s, "")
}

// Fingerprint returns a short stable content hash, used to skip scoring
// entirely when the resolved region is byte-identical to the capture.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}

// Assess runs the verdict state machine for one shard given the content
// its anchor currently resolves to. resolved=false means the anchor could
// not be located at all. Assess never mutates the shard and never deletes
// anything; callers act on the verdict.
func Assess(shard *model.Shard, current string, resolved bool, th Thresholds) Verdict {
	if !resolved {
		return Verdict{
			Score:   0.0,
			Status:  StatusBroken,
			Message: fmt.Sprintf("Could not resolve shard in %s", shard.File),
		}
	}

	if Fingerprint(current) == shard.OriginalHash {
		return Verdict{Score: 1.0, Status: StatusHealthy, Message: "Unchanged"}
	}

	score := Score(shard.OriginalContent, current)

	switch {
	case score >= th.Healthy:
		return Verdict{
			Score:   score,
			Status:  StatusHealthy,
			Message: "Minor changes, summary still valid",
		}
	case score >= th.Stale:
		return Verdict{
			Score:   score,
			Status:  StatusDegraded,
			Message: "Notable changes detected, showing raw content instead of summary",
		}
	}

	viewsLeft := th.MaxStaleViews - shard.StaleViews
	if viewsLeft <= 0 {
		return Verdict{
			Score:   score,
			Status:  StatusExpired,
			Message: "Major changes detected. This shard will be deleted. Re-create it to keep it alive.",
		}
	}
	return Verdict{
		Score:   score,
		Status:  StatusStale,
		Message: fmt.Sprintf("Major changes detected. Will be deleted after %d more view(s) unless re-created.", viewsLeft),
	}
}
