package analysis

import (
	"sync"

	"github.com/veracitor/veracity/internal/model"
)

// Accumulator receives one report per completed analysis. Injected so
// dashboard counters are explicit state, never ambient globals the
// engine reads back.
type Accumulator interface {
	Record(verdict model.Verdict, fusedScore float64)
}

// Totals is the in-memory accumulator backing the dashboard counters
type Totals struct {
	mu        sync.Mutex
	total     int
	byVerdict map[model.Verdict]int
	scoreSum  float64
}

// NewTotals creates an empty accumulator
func NewTotals() *Totals {
	return &Totals{byVerdict: make(map[model.Verdict]int)}
}

// Record counts one analysis
func (t *Totals) Record(verdict model.Verdict, fusedScore float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.byVerdict[verdict]++
	t.scoreSum += fusedScore
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	Total         int                   `json:"total"`
	ByVerdict     map[model.Verdict]int `json:"by_verdict"`
	DetectionRate float64               `json:"detection_rate"`
	MeanScore     float64               `json:"mean_score"`
}

// Snapshot returns the current counters. DetectionRate is the fraction
// of analyses classified fake or adult-flagged.
func (t *Totals) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	byVerdict := make(map[model.Verdict]int, len(t.byVerdict))
	for k, v := range t.byVerdict {
		byVerdict[k] = v
	}

	snap := Snapshot{Total: t.total, ByVerdict: byVerdict}
	if t.total > 0 {
		flagged := t.byVerdict[model.VerdictFake] + t.byVerdict[model.VerdictAdultFlagged]
		snap.DetectionRate = float64(flagged) / float64(t.total)
		snap.MeanScore = t.scoreSum / float64(t.total)
	}
	return snap
}
