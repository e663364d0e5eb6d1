package storage

import (
	"context"
	"sync"

	"github.com/InQaaaaGit/smart_filter.git/internal/models"
)

// DefaultMemoryCapacity число решений, которые хранит MemoryStorage
const DefaultMemoryCapacity = 10000

// MemoryStorage реализует DecisionStorage в памяти.
// При переполнении вытесняются самые старые записи.
type MemoryStorage struct {
	mu        sync.RWMutex
	decisions []models.Decision
	index     map[string]int
	capacity  int
}

// NewMemoryStorage создает новый экземпляр MemoryStorage
func NewMemoryStorage(capacity int) *MemoryStorage {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStorage{
		index:    make(map[string]int),
		capacity: capacity,
	}
}

// Save сохраняет решение в памяти
func (ms *MemoryStorage) Save(_ context.Context, decision models.Decision) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.decisions = append(ms.decisions, decision)
	if len(ms.decisions) > ms.capacity {
		ms.decisions = append([]models.Decision(nil), ms.decisions[len(ms.decisions)-ms.capacity:]...)
		ms.reindex()
		return nil
	}
	ms.index[decision.ID] = len(ms.decisions) - 1
	return nil
}

func (ms *MemoryStorage) reindex() {
	ms.index = make(map[string]int, len(ms.decisions))
	for i, d := range ms.decisions {
		ms.index[d.ID] = i
	}
}

// Get получает решение по идентификатору
func (ms *MemoryStorage) Get(_ context.Context, id string) (models.Decision, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	i, ok := ms.index[id]
	if !ok {
		return models.Decision{}, ErrDecisionNotFound
	}
	return ms.decisions[i], nil
}

// Recent возвращает последние решения, новые первыми
func (ms *MemoryStorage) Recent(_ context.Context, limit int) ([]models.Decision, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if limit <= 0 || limit > len(ms.decisions) {
		limit = len(ms.decisions)
	}
	result := make([]models.Decision, 0, limit)
	for i := len(ms.decisions) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, ms.decisions[i])
	}
	return result, nil
}

// Close ничего не делает для хранилища в памяти
func (ms *MemoryStorage) Close() error {
	return nil
}
