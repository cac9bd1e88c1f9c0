package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mahbubchula/policysim/internal/modules/agent"
	"github.com/mahbubchula/policysim/internal/modules/comparison"
	"github.com/mahbubchula/policysim/internal/modules/policy"
)

// analyzeRequest is the body of POST /api/analyze
type analyzeRequest struct {
	Context  string          `json:"context"`
	Policies []policy.Policy `json:"policies"`
}

// compareRequest is the body of POST /api/compare. Either ScenarioIDs or
// inline Scenarios may be given; IDs win when both are present.
type compareRequest struct {
	Context     string            `json:"context"`
	ScenarioIDs []string          `json:"scenario_ids"`
	Scenarios   []policy.Scenario `json:"scenarios"`
}

// queryRequest is the body of POST /api/query
type queryRequest struct {
	Context string `json:"context"`
	Text    string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.library.List())
}

func (s *Server) handleListContexts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.regions.List())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, policy.NewValidationError("body", "malformed JSON: %v", err))
		return
	}

	rctx, err := s.regions.Get(req.Context)
	if err != nil {
		s.writeError(w, err)
		return
	}

	started := time.Now()
	result, err := s.agent.AnalyzePolicy(r.Context(), rctx, req.Policies)
	if err != nil {
		s.observeFailure(rctx.Name, "analyze")
		s.writeError(w, err)
		return
	}
	s.observeSuccess(rctx.Name, "analyze", started)

	if s.history != nil {
		if err := s.history.RecordAnalysis(result); err != nil {
			s.log.Error().Err(err).Str("request_id", result.RequestID).Msg("Failed to persist run")
		}
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, policy.NewValidationError("body", "malformed JSON: %v", err))
		return
	}

	rctx, err := s.regions.Get(req.Context)
	if err != nil {
		s.writeError(w, err)
		return
	}

	started := time.Now()
	var outcome *agent.ComparisonOutcome
	if len(req.ScenarioIDs) > 0 {
		outcome, err = s.agent.CompareScenarioIDs(r.Context(), rctx, req.ScenarioIDs)
	} else {
		outcome, err = s.agent.CompareScenarios(r.Context(), rctx, req.Scenarios)
	}
	if err != nil {
		s.observeFailure(rctx.Name, "compare")
		s.writeError(w, err)
		return
	}
	s.observeSuccess(rctx.Name, "compare", started)

	if s.history != nil {
		if err := s.history.RecordComparison(outcome); err != nil {
			s.log.Error().Err(err).Str("request_id", outcome.RequestID).Msg("Failed to persist run")
		}
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, policy.NewValidationError("body", "malformed JSON: %v", err))
		return
	}
	if req.Text == "" {
		s.writeError(w, policy.NewValidationError("text", "query text is required"))
		return
	}

	rctx, err := s.regions.Get(req.Context)
	if err != nil {
		s.writeError(w, err)
		return
	}

	started := time.Now()
	result, err := s.agent.NaturalLanguageQuery(r.Context(), rctx, req.Text)
	if err != nil {
		s.observeFailure(rctx.Name, "query")
		s.writeError(w, err)
		return
	}
	s.observeSuccess(rctx.Name, "query", started)

	if s.history != nil {
		if result.Analysis != nil {
			if err := s.history.RecordAnalysis(result.Analysis); err != nil {
				s.log.Error().Err(err).Msg("Failed to persist run")
			}
		}
		if result.Comparison != nil {
			if err := s.history.RecordComparison(result.Comparison); err != nil {
				s.log.Error().Err(err).Msg("Failed to persist run")
			}
		}
	}
	s.writeJSON(w, http.StatusOK, result)
}

// metric is accepted as an alias of target
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("target")
	if metric == "" {
		metric = r.URL.Query().Get("metric")
	}
	if metric == "" {
		metric = string(comparison.MetricOverallScore)
	}

	rctx, err := s.regions.Get(r.URL.Query().Get("context"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	recs, err := s.agent.Recommendations(r.Context(), rctx, comparison.Metric(metric))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"context":         rctx.Name,
		"metric":          metric,
		"recommendations": recs,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, policy.NewValidationError("limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	runs, err := s.history.List(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.history.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps ValidationError to 400 and everything else to 500
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var verr *policy.ValidationError
	if errors.As(err, &verr) {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) observeSuccess(context, operation string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSimulation(context, operation, time.Since(started).Seconds())
		s.metrics.ObserveAgentRequest(operation, "COMPLETE")
	}
}

func (s *Server) observeFailure(context, operation string) {
	if s.metrics != nil {
		s.metrics.ObserveSimulationFailure(context, operation)
		s.metrics.ObserveAgentRequest(operation, "ERROR")
	}
}
