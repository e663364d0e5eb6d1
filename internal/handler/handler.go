package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/InQaaaaGit/smart_filter.git/internal/buildinfo"
	"github.com/InQaaaaGit/smart_filter.git/internal/classifier"
	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/InQaaaaGit/smart_filter.git/internal/middleware"
	"github.com/InQaaaaGit/smart_filter.git/internal/models"
	"github.com/InQaaaaGit/smart_filter.git/internal/service"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"

	// HeaderNSFWStatus заголовок с итогом фильтрации: safe или blurred
	HeaderNSFWStatus = models.HeaderNSFWStatus
	// HeaderNSFWCategory заголовок с категорией классификатора
	HeaderNSFWCategory = models.HeaderNSFWCategory

	missingURLMessage  = "Missing image URL"
	filterFailedError  = "Filter failed"
	proxyFailedError   = "Proxy failed"
	unsupportedError   = "Unsupported content type"
	serviceName        = "Smart Image Filter"
	healthTimeLayout   = "2006-01-02T15:04:05.000Z07:00"
	defaultDecisionsN  = 50
	maxDecisionsN      = 500
	decisionNotFound   = "Decision not found"
	invalidLimitError  = "Invalid limit"
	internalErrorError = "Internal server error"
)

// Handler обрабатывает HTTP запросы сервиса фильтрации
type Handler struct {
	service service.FilterService
	cfg     *config.Config
	build   *buildinfo.Info
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler создает обработчики. build может быть nil.
func NewHandler(svc service.FilterService, cfg *config.Config, build *buildinfo.Info, logger *zap.Logger) *Handler {
	if build == nil {
		build = buildinfo.DefaultInfo()
	}
	return &Handler{
		service: svc,
		cfg:     cfg,
		build:   build,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleFilter обрабатывает GET /filter?url=...
// Возвращает оригинал для безопасной категории и размытый PNG в остальных случаях.
func (h *Handler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	encodedURL := r.URL.Query().Get("url")
	if encodedURL == "" {
		h.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: missingURLMessage})
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	result, err := h.service.Filter(r.Context(), encodedURL, requestID)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedContentType) {
			h.writeJSON(w, http.StatusUnsupportedMediaType, models.ErrorResponse{
				Error:   unsupportedError,
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("Filter failed", zap.String("request_id", requestID), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   filterFailedError,
			Message: err.Error(),
		})
		return
	}

	category := result.Category
	if category == "" {
		category = classifier.CategoryUnknown
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set(HeaderNSFWStatus, result.Status)
	w.Header().Set(HeaderNSFWCategory, category)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.Error("Error writing image response", zap.Error(err))
	}
}

// HandleProxy обрабатывает GET /proxy?url=... и отдаёт изображение без изменений
func (h *Handler) HandleProxy(w http.ResponseWriter, r *http.Request) {
	encodedURL := r.URL.Query().Get("url")
	if encodedURL == "" {
		h.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: missingURLMessage})
		return
	}

	img, err := h.service.Proxy(r.Context(), encodedURL)
	if err != nil {
		h.logger.Error("Proxy error", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: proxyFailedError})
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.logger.Error("Error writing proxy response", zap.Error(err))
	}
}

// writeJSON отправляет value в формате JSON с указанным статусом
func (h *Handler) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logger.Error("Error writing JSON response", zap.Error(err))
	}
}
