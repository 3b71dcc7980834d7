package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pianoflow/pianoeval/internal/notemodel"
	"github.com/pianoflow/pianoeval/pkg/pianoeval"
)

// EvaluateRequest is the request body for /api/evaluate/* routes.
type EvaluateRequest struct {
	Score       json.RawMessage    `json:"score"`
	Performance json.RawMessage    `json:"performance"`
	Options     *pianoeval.Options `json:"options,omitempty"`
}

func decodeEvaluateRequest(r *http.Request) (*notemodel.Score, *notemodel.Performance, *pianoeval.Options, error) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, nil, err
	}
	score, err := notemodel.UnmarshalScoreJSON(req.Score)
	if err != nil {
		return nil, nil, nil, err
	}
	performance, err := notemodel.UnmarshalPerformanceJSON(req.Performance)
	if err != nil {
		return nil, nil, nil, err
	}
	opt := req.Options
	if opt == nil {
		resolved := defaultAlignOptions
		opt = &resolved
	}
	return score, performance, opt, nil
}

// EvaluatePipelineHandler runs the full alignment + evaluator + feedback pipeline.
func EvaluatePipelineHandler(w http.ResponseWriter, r *http.Request) {
	score, performance, opt, err := decodeEvaluateRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := pianoeval.EvaluatePipeline(score, performance, opt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// EvaluateNotesOnlyHandler runs the fast-path accuracy-only evaluation.
func EvaluateNotesOnlyHandler(w http.ResponseWriter, r *http.Request) {
	score, performance, _, err := decodeEvaluateRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := pianoeval.EvaluateNotesOnly(score, performance)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
