package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/InQaaaaGit/smart_filter.git/internal/models"
	"github.com/InQaaaaGit/smart_filter.git/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleRecentDecisions возвращает последние решения фильтра.
// Параметр limit по умолчанию 50, не больше 500.
func (h *Handler) HandleRecentDecisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultDecisionsN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: invalidLimitError})
			return
		}
		limit = min(n, maxDecisionsN)
	}

	decisions, err := h.service.RecentDecisions(r.Context(), limit)
	if err != nil {
		h.logger.Error("Error reading decisions", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: internalErrorError})
		return
	}
	if decisions == nil {
		decisions = []models.Decision{}
	}

	h.writeJSON(w, http.StatusOK, decisions)
}

// HandleGetDecision возвращает одно решение по идентификатору
func (h *Handler) HandleGetDecision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	decision, err := h.service.GetDecision(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrDecisionNotFound) {
			h.writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: decisionNotFound})
			return
		}
		h.logger.Error("Error reading decision", zap.String("id", id), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: internalErrorError})
		return
	}

	h.writeJSON(w, http.StatusOK, decision)
}
