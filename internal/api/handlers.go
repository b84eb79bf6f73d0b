package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/service"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// Handler contains dependencies for HTTP handlers
type Handler struct {
	analyses    *service.AnalysisService
	settlements *service.SettlementService
	performance *service.PerformanceService
	engine      *markets.Engine
	logger      *logrus.Logger
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SettlementRequest is the final score posted to settle a fixture
type SettlementRequest struct {
	Home   *int `json:"home" validate:"required,gte=0"`
	Away   *int `json:"away" validate:"required,gte=0"`
	HTHome *int `json:"ht_home,omitempty" validate:"omitempty,gte=0"`
	HTAway *int `json:"ht_away,omitempty" validate:"omitempty,gte=0"`
}

// Score converts the request into a final score
func (r SettlementRequest) Score() models.FinalScore {
	return models.FinalScore{Home: *r.Home, Away: *r.Away, HTHome: r.HTHome, HTAway: r.HTAway}
}

// CreateAnalysis runs and stores an analysis of the posted match
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var match models.MatchContext
	if err := decodeBody(w, r, &match); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid match body", err)
		return
	}

	result, err := h.analyses.Analyze(r.Context(), &match)
	if err != nil {
		h.respondDomainError(w, "analysis failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetAnalysis returns the stored analysis of a fixture
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := fixtureParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid fixture id", err)
		return
	}

	record, err := h.analyses.Get(r.Context(), fixtureID)
	if err != nil {
		h.respondDomainError(w, "failed to retrieve analysis", err)
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// SettleAnalysis records the final score of a fixture
func (h *Handler) SettleAnalysis(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := fixtureParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid fixture id", err)
		return
	}

	var req SettlementRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid settlement body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid final score", err)
		return
	}

	settled, err := h.settlements.Settle(r.Context(), fixtureID, req.Score())
	if err != nil {
		h.respondDomainError(w, "settlement failed", err)
		return
	}

	respondJSON(w, http.StatusOK, settled)
}

// Markets returns the derived market surface without running any agent
func (h *Handler) Markets(w http.ResponseWriter, r *http.Request) {
	var match models.MatchContext
	if err := decodeBody(w, r, &match); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid match body", err)
		return
	}
	if err := h.analyses.ValidateMatch(&match); err != nil {
		h.respondDomainError(w, "invalid match", err)
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Analyze(&match))
}

// Performance reports hit rates and staking returns over ?days= (default 30)
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > service.MaxReportDays {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", service.MaxReportDays), err)
			return
		}
		days = v
	}

	report, err := h.performance.Report(r.Context(), days)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func fixtureParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "fixtureID"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("fixture id must be positive, got %d", id)
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func (h *Handler) respondDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidMatch), errors.Is(err, models.ErrInvalidScore):
		h.respondError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, models.ErrNotFound):
		h.respondError(w, http.StatusNotFound, message, err)
	case errors.Is(err, models.ErrAlreadySettled):
		h.respondError(w, http.StatusConflict, message, err)
	default:
		h.respondError(w, http.StatusInternalServerError, message, err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	if err != nil {
		resp.Message = fmt.Sprintf("%s: %v", message, err)
		entry := h.logger.WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error(message)
		} else {
			entry.Debug(message)
		}
	}
	respondJSON(w, status, resp)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
