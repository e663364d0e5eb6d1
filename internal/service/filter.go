// Package service реализует сценарии фильтрации и проксирования изображений.
package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/InQaaaaGit/smart_filter.git/internal/classifier"
	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/InQaaaaGit/smart_filter.git/internal/fetcher"
	"github.com/InQaaaaGit/smart_filter.git/internal/models"
	"github.com/InQaaaaGit/smart_filter.git/internal/resolver"
	"github.com/InQaaaaGit/smart_filter.git/internal/storage"
	"github.com/InQaaaaGit/smart_filter.git/internal/transform"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const auditTimeout = 5 * time.Second

var (
	// ErrUnsupportedContentType возвращается, когда загруженный ресурс не является изображением
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrTransform возвращается при ошибке размытия или кодирования
	ErrTransform = errors.New("image transform failed")
)

// Fetcher определяет интерфейс загрузки изображений
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Image, error)
}

// FilterResult итог фильтрации одного изображения
type FilterResult struct {
	Data        []byte
	ContentType string
	Status      string
	Category    string
	SourceURL   string
}

// FilterService определяет интерфейс сервиса фильтрации
type FilterService interface {
	Filter(ctx context.Context, rawURL, requestID string) (*FilterResult, error)
	Proxy(ctx context.Context, rawURL string) (*fetcher.Image, error)
	GetDecision(ctx context.Context, id string) (models.Decision, error)
	RecentDecisions(ctx context.Context, limit int) ([]models.Decision, error)
	CheckConnection(ctx context.Context) error
}

// FilterServiceImpl реализует FilterService
type FilterServiceImpl struct {
	config      *config.Config
	fetcher     Fetcher
	classifier  classifier.Classifier
	transformer transform.Transformer
	storage     storage.DecisionStorage
	logger      *zap.Logger
	now         func() time.Time
}

var _ FilterService = (*FilterServiceImpl)(nil)

// NewFilterService создает новый экземпляр FilterService
func NewFilterService(
	cfg *config.Config,
	f Fetcher,
	c classifier.Classifier,
	t transform.Transformer,
	s storage.DecisionStorage,
	logger *zap.Logger,
) *FilterServiceImpl {
	return &FilterServiceImpl{
		config:      cfg,
		fetcher:     f,
		classifier:  c,
		transformer: t,
		storage:     s,
		logger:      logger,
		now:         time.Now,
	}
}

// Filter загружает изображение, классифицирует его и возвращает оригинал
// или размытую копию. Сбой классификатора ведёт к размытию.
func (s *FilterServiceImpl) Filter(ctx context.Context, rawURL, requestID string) (*FilterResult, error) {
	log := s.logger.With(zap.String("request_id", requestID))

	sourceURL := resolver.Resolve(rawURL)
	log.Info("Decoded image URL", zap.String("encoded", rawURL), zap.String("decoded", sourceURL))

	img, err := s.fetcher.Fetch(ctx, sourceURL, fetcher.Options{
		Timeout: s.config.FetchTimeout,
		Accept:  fetcher.AcceptImage,
	})
	if err != nil {
		log.Error("Image download failed", zap.String("url", sourceURL), zap.Error(err))
		s.record(ctx, models.Decision{RequestID: requestID, SourceURL: sourceURL, Status: models.StatusFetchFailed})
		return nil, err
	}
	log.Info("Image downloaded",
		zap.Int("size", len(img.Data)),
		zap.String("content_type", img.ContentType))

	if !IsSupportedContentType(img.ContentType) {
		s.record(ctx, models.Decision{
			RequestID:   requestID,
			SourceURL:   sourceURL,
			Status:      models.StatusUnsupported,
			ContentType: img.ContentType,
			Size:        len(img.Data),
		})
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, img.ContentType)
	}

	verdict := s.classifier.Classify(ctx, img.Data)

	result := &FilterResult{
		Category:  verdict.Category,
		SourceURL: sourceURL,
	}
	if verdict.Safe {
		log.Info("Returning original safe image", zap.String("category", verdict.Category))
		result.Data = img.Data
		result.ContentType = img.ContentType
		result.Status = models.StatusSafe
	} else {
		log.Info("Applying blur to unsafe image", zap.String("category", verdict.Category))
		blurred, err := s.transformer.Blur(ctx, img.Data)
		if err != nil {
			log.Error("Blur failed", zap.Error(err))
			s.record(ctx, models.Decision{
				RequestID:   requestID,
				SourceURL:   sourceURL,
				Status:      models.StatusFailed,
				Category:    verdict.Category,
				ContentType: img.ContentType,
				Size:        len(img.Data),
			})
			return nil, fmt.Errorf("%w: %w", ErrTransform, err)
		}
		result.Data = blurred
		result.ContentType = transform.OutputContentType
		result.Status = models.StatusBlurred
	}

	s.record(ctx, models.Decision{
		RequestID:   requestID,
		SourceURL:   sourceURL,
		Status:      result.Status,
		Category:    result.Category,
		ContentType: result.ContentType,
		Size:        len(result.Data),
	})
	return result, nil
}

// Proxy загружает изображение и возвращает его без изменений
func (s *FilterServiceImpl) Proxy(ctx context.Context, rawURL string) (*fetcher.Image, error) {
	sourceURL := resolver.Resolve(rawURL)
	s.logger.Info("Proxying image", zap.String("url", sourceURL))

	return s.fetcher.Fetch(ctx, sourceURL, fetcher.Options{Timeout: s.config.ProxyTimeout})
}

// GetDecision возвращает запись журнала по идентификатору
func (s *FilterServiceImpl) GetDecision(ctx context.Context, id string) (models.Decision, error) {
	return s.storage.Get(ctx, id)
}

// RecentDecisions возвращает последние записи журнала
func (s *FilterServiceImpl) RecentDecisions(ctx context.Context, limit int) ([]models.Decision, error) {
	return s.storage.Recent(ctx, limit)
}

// CheckConnection проверяет доступность хранилища, если оно это поддерживает
func (s *FilterServiceImpl) CheckConnection(ctx context.Context) error {
	if checker, ok := s.storage.(storage.DatabaseChecker); ok {
		return checker.CheckConnection(ctx)
	}
	return nil
}

// record сохраняет решение. Ошибка журнала не влияет на ответ клиенту.
func (s *FilterServiceImpl) record(ctx context.Context, d models.Decision) {
	d.ID = uuid.NewString()
	d.CreatedAt = s.now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := s.storage.Save(ctx, d); err != nil {
		s.logger.Error("Error saving decision", zap.String("status", d.Status), zap.Error(err))
	}
}

// IsSupportedContentType сообщает, можно ли обрабатывать ресурс как изображение.
func IsSupportedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	mediaType = strings.ToLower(mediaType)
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/octet-stream"
}
