package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Strategist/internal/export"
	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
	"github.com/MikeSquared-Agency/Strategist/internal/session"
	"github.com/MikeSquared-Agency/Strategist/internal/store"
)

type EvaluationsHandler struct {
	eval      *session.Evaluator
	history   store.Store
	csvHeader string
	logger    *slog.Logger
}

func NewEvaluationsHandler(e *session.Evaluator, history store.Store, csvHeader string, logger *slog.Logger) *EvaluationsHandler {
	return &EvaluationsHandler{eval: e, history: history, csvHeader: csvHeader, logger: logger}
}

// CreateEvaluationRequest carries either numeric Weights or one Tier per
// criterion. Tiers win when both are set.
type CreateEvaluationRequest struct {
	IntegrationPair string      `json:"integration_pair"`
	Strategies      []string    `json:"strategies"`
	Weights         []float64   `json:"weights,omitempty"`
	Tiers           []string    `json:"tiers,omitempty"`
	Scores          [][]float64 `json:"scores"`
}

type EvaluationResponse struct {
	RecordID        string             `json:"record_id"`
	IntegrationPair string             `json:"integration_pair"`
	Results         []scoring.Entry    `json:"results"`
	Scores          map[string]float64 `json:"scores"`
	Best            string             `json:"best"`
	BestScore       float64            `json:"best_score"`
	Tied            []string           `json:"tied,omitempty"`
	Frontier        []string           `json:"frontier"`
	Weights         []float64          `json:"weights"`
	WeightsRescaled bool               `json:"weights_rescaled"`
	ExportPath      string             `json:"export_path,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (h *EvaluationsHandler) Criteria(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"criteria":       h.eval.Criteria(),
		"min_strategies": h.eval.Config().MinStrategies,
		"max_strategies": h.eval.Config().MaxStrategies,
	})
}

// rejectInput answers 422 with the error's kind.
func (h *EvaluationsHandler) rejectInput(w http.ResponseWriter, err error) {
	kind := session.ErrorKind(err)
	evaluationsTotal.WithLabelValues(kind).Inc()
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: kind})
}

func (h *EvaluationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			evaluationsTotal.WithLabelValues("non_numeric_input").Inc()
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("%s: expected a number", typeErr.Field),
				Kind:  "non_numeric_input",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	weights := req.Weights
	if len(req.Tiers) > 0 {
		tiers := make([]session.Tier, len(req.Tiers))
		for i, s := range req.Tiers {
			t, err := session.ParseTier(s)
			if err != nil {
				h.rejectInput(w, fmt.Errorf("tiers[%d]: %w", i, err))
				return
			}
			tiers[i] = t
		}
		tw, err := session.TierWeights(tiers, h.eval.Config().TierWeights)
		if err != nil {
			h.rejectInput(w, err)
			return
		}
		weights = tw
	}

	start := time.Now()
	out, err := h.eval.Run(r.Context(), session.Request{
		IntegrationPair: req.IntegrationPair,
		Strategies:      req.Strategies,
		Weights:         weights,
		Scores:          req.Scores,
	})
	evaluationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if session.IsInputError(err) {
			h.rejectInput(w, err)
			return
		}
		kind := session.ErrorKind(err)
		evaluationsTotal.WithLabelValues(kind).Inc()
		h.logger.Error("evaluation failed", "pair", req.IntegrationPair, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "evaluation failed", Kind: kind})
		return
	}

	evaluationsTotal.WithLabelValues("ok").Inc()
	if out.WeightsRescaled {
		weightsRescaledTotal.Inc()
	}
	if out.Warnings != nil {
		sinkWarningsTotal.Inc()
	}
	writeJSON(w, http.StatusCreated, newEvaluationResponse(out))
}

func newEvaluationResponse(out *session.Outcome) EvaluationResponse {
	resp := EvaluationResponse{
		RecordID:        out.Record.ID.String(),
		IntegrationPair: out.Record.IntegrationPair,
		Results:         out.Result.Entries,
		Scores:          out.Result.Scores(),
		Best:            out.Best.Strategy,
		BestScore:       out.Best.Score,
		Frontier:        out.Frontier,
		Weights:         out.Weights,
		WeightsRescaled: out.WeightsRescaled,
		ExportPath:      out.ExportPath,
	}
	if len(out.Tied) > 1 {
		for _, e := range out.Tied {
			resp.Tied = append(resp.Tied, e.Strategy)
		}
	}
	if out.Warnings != nil {
		resp.Warnings = []string{out.Warnings.Error()}
	}
	return resp
}

func (h *EvaluationsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.HistoryFilter{IntegrationPair: r.URL.Query().Get("pair")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = n
	}

	records := []*store.Record{}
	if h.history != nil {
		recs, err := h.history.ListRecords(r.Context(), filter)
		if err != nil {
			h.logger.Error("failed to list history", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list history"})
			return
		}
		if recs != nil {
			records = recs
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// Export renders the most recent evaluation of a pair as CSV.
func (h *EvaluationsHandler) Export(w http.ResponseWriter, r *http.Request) {
	pair, err := url.PathUnescape(chi.URLParam(r, "pair"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid pair"})
		return
	}
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no evaluations for pair"})
		return
	}
	recs, err := h.history.ListRecords(r.Context(), store.HistoryFilter{IntegrationPair: pair, Limit: 1})
	if err != nil {
		h.logger.Error("failed to load history", "pair", pair, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load history"})
		return
	}
	if len(recs) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no evaluations for pair"})
		return
	}

	result := recordResult(recs[0])
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s"`, export.SafeName(pair), export.ResultsFile))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, result, h.csvHeader); err != nil {
		h.logger.Warn("failed to write csv", "pair", pair, "error", err)
	}
}

func recordResult(rec *store.Record) *scoring.Result {
	res := &scoring.Result{Entries: make([]scoring.Entry, len(rec.FinalResults))}
	for i, fs := range rec.FinalResults {
		res.Entries[i] = scoring.Entry{Strategy: fs.Strategy, Score: fs.Score}
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
