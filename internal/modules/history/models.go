// Package history persists completed runs so past analyses can be listed and
// reopened. Full results are stored as msgpack blobs next to a few indexed
// summary columns.
package history

import (
	"time"

	"github.com/mahbubchula/policysim/internal/modules/agent"
)

// RunKind distinguishes the stored payload shape
type RunKind string

const (
	RunKindAnalysis   RunKind = "analysis"
	RunKindComparison RunKind = "comparison"
)

// RunSummary is the indexed portion of a stored run
type RunSummary struct {
	ID           string    `json:"id"`
	Kind         RunKind   `json:"kind"`
	Context      string    `json:"context"`
	OverallScore float64   `json:"overall_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// Run is a stored run with its decoded payload. Exactly one of Analysis or
// Comparison is set, matching Kind.
type Run struct {
	RunSummary
	Analysis   *agent.AnalysisResult    `json:"analysis,omitempty"`
	Comparison *agent.ComparisonOutcome `json:"comparison,omitempty"`
}
