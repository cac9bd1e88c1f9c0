package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mahbubchula/policysim/internal/database"
	"github.com/mahbubchula/policysim/internal/modules/agent"
	"github.com/mahbubchula/policysim/internal/modules/policy"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	context       TEXT NOT NULL,
	overall_score REAL NOT NULL,
	created_at    TEXT NOT NULL,
	payload       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// Repository stores and retrieves completed runs
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates the repository and ensures the schema exists
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create runs schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "history").Logger(),
	}, nil
}

// RecordAnalysis persists one completed single-policy analysis
func (r *Repository) RecordAnalysis(result *agent.AnalysisResult) error {
	payload, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis payload: %w", err)
	}
	return r.insert(result.RequestID, RunKindAnalysis, result.Context,
		result.PolicyResult.OverallScore, payload)
}

// RecordComparison persists one completed multi-scenario comparison. The
// stored score is the overall winner's.
func (r *Repository) RecordComparison(outcome *agent.ComparisonOutcome) error {
	payload, err := msgpack.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode comparison payload: %w", err)
	}

	var winnerScore float64
	for _, e := range outcome.Comparison.Entries {
		if e.ScenarioID == outcome.Comparison.OverallWinner {
			winnerScore = e.Result.OverallScore
			break
		}
	}
	return r.insert(outcome.RequestID, RunKindComparison, outcome.Context, winnerScore, payload)
}

func (r *Repository) insert(id string, kind RunKind, context string, score float64, payload []byte) error {
	_, err := r.db.Exec(
		`INSERT INTO runs (id, kind, context, overall_score, created_at, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(kind), context, score, time.Now().UTC().Format(time.RFC3339Nano), payload,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	r.log.Debug().Str("run_id", id).Str("kind", string(kind)).Msg("Run persisted")
	return nil
}

// List returns the most recent run summaries, newest first
func (r *Repository) List(limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, kind, context, overall_score, created_at FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := make([]RunSummary, 0, limit)
	for rows.Next() {
		var s RunSummary
		var kind, createdAt string
		if err := rows.Scan(&s.ID, &kind, &s.Context, &s.OverallScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Kind = RunKind(kind)
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get loads one run with its decoded payload
func (r *Repository) Get(id string) (*Run, error) {
	var run Run
	var kind, createdAt string
	var payload []byte

	err := r.db.QueryRow(
		`SELECT id, kind, context, overall_score, created_at, payload FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &kind, &run.Context, &run.OverallScore, &createdAt, &payload)
	if err == sql.ErrNoRows {
		return nil, policy.NewValidationError("run_id", "unknown run %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	run.Kind = RunKind(kind)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	switch run.Kind {
	case RunKindAnalysis:
		var a agent.AnalysisResult
		if err := msgpack.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("decode analysis payload for %s: %w", id, err)
		}
		run.Analysis = &a
	case RunKindComparison:
		var c agent.ComparisonOutcome
		if err := msgpack.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("decode comparison payload for %s: %w", id, err)
		}
		run.Comparison = &c
	default:
		return nil, fmt.Errorf("run %s has unknown kind %q", id, kind)
	}
	return &run, nil
}
