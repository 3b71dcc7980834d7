package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pianoflow/pianoeval/internal/align"
	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// AlignRequest is the shared request body for every /api/align/* route.
type AlignRequest struct {
	Score       json.RawMessage `json:"score"`
	Performance json.RawMessage `json:"performance"`
	Options     *align.Options  `json:"options,omitempty"`
}

var defaultAlignOptions = align.DefaultOptions()

// SetDefaultOptions overrides the alignment options used for requests
// that omit an explicit "options" field, normally loaded once at
// startup from a config file via PIANOEVAL_CONFIG.
func SetDefaultOptions(opt align.Options) {
	defaultAlignOptions = opt
}

func decodeAlignRequest(r *http.Request) (*notemodel.Score, *notemodel.Performance, align.Options, error) {
	var req AlignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, align.Options{}, err
	}

	score, err := notemodel.UnmarshalScoreJSON(req.Score)
	if err != nil {
		return nil, nil, align.Options{}, err
	}
	performance, err := notemodel.UnmarshalPerformanceJSON(req.Performance)
	if err != nil {
		return nil, nil, align.Options{}, err
	}

	opt := defaultAlignOptions
	if req.Options != nil {
		opt = *req.Options
	}
	return score, performance, opt, nil
}

func writeAlignmentResult(w http.ResponseWriter, result *notemodel.AlignmentResult) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// DTWAlignHandler runs the DTW strategy.
func DTWAlignHandler(w http.ResponseWriter, r *http.Request) {
	score, performance, opt, err := decodeAlignRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := align.NewDTW().Align(score, performance, opt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeAlignmentResult(w, result)
}

// GSAAlignHandler runs the GSA strategy.
func GSAAlignHandler(w http.ResponseWriter, r *http.Request) {
	score, performance, opt, err := decodeAlignRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := align.NewGSA().Align(score, performance, opt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeAlignmentResult(w, result)
}

// HybridAlignHandler runs the production Hybrid strategy.
func HybridAlignHandler(w http.ResponseWriter, r *http.Request) {
	score, performance, opt, err := decodeAlignRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := align.NewHybrid().Align(score, performance, opt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeAlignmentResult(w, result)
}
