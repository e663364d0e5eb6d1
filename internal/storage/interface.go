package storage

import (
	"context"

	"github.com/InQaaaaGit/smart_filter.git/internal/models"
)

// DecisionStorage интерфейс журнала решений фильтра
type DecisionStorage interface {
	// Save добавляет решение в журнал
	Save(ctx context.Context, decision models.Decision) error

	// Get возвращает решение по идентификатору.
	// Возвращает ErrDecisionNotFound, если запись не найдена.
	Get(ctx context.Context, id string) (models.Decision, error)

	// Recent возвращает не более limit последних решений, новые первыми
	Recent(ctx context.Context, limit int) ([]models.Decision, error)

	// Close освобождает ресурсы хранилища
	Close() error
}

// DatabaseChecker интерфейс для проверки соединения с базой данных
type DatabaseChecker interface {
	// CheckConnection проверяет соединение с базой данных
	CheckConnection(ctx context.Context) error
}
