package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/InQaaaaGit/smart_filter.git/internal/models"
	"go.uber.org/zap"
)

// FileStorage implements DecisionStorage as a JSON lines file
// with an in-memory index for reads.
type FileStorage struct {
	filePath string
	mutex    sync.Mutex
	file     *os.File
	memory   *MemoryStorage
	logger   *zap.Logger
}

// NewFileStorage creates a new FileStorage instance
func NewFileStorage(filePath string, logger *zap.Logger) (*FileStorage, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	fs := &FileStorage{
		filePath: filePath,
		file:     file,
		memory:   NewMemoryStorage(DefaultMemoryCapacity),
		logger:   logger,
	}

	// Битые записи не мешают запуску, журнал дописывается дальше
	if err := fs.loadFromFile(); err != nil {
		logger.Error("Error loading decisions from file", zap.String("path", filePath), zap.Error(err))
	}

	return fs, nil
}

// loadFromFile loads existing records from the file
func (fs *FileStorage) loadFromFile() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if _, err := fs.file.Seek(0, 0); err != nil {
		return fmt.Errorf("error seeking to file start: %w", err)
	}

	decoder := json.NewDecoder(fs.file)
	for decoder.More() {
		var record models.Decision
		if err := decoder.Decode(&record); err != nil {
			return fmt.Errorf("error decoding record: %w", err)
		}
		if err := fs.memory.Save(context.Background(), record); err != nil {
			return err
		}
	}

	return nil
}

// Save дописывает решение в файл
func (fs *FileStorage) Save(ctx context.Context, decision models.Decision) error {
	data, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("error marshaling decision: %w", err)
	}

	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return fs.memory.Save(ctx, decision)
}

// Get получает решение по идентификатору
func (fs *FileStorage) Get(ctx context.Context, id string) (models.Decision, error) {
	return fs.memory.Get(ctx, id)
}

// Recent возвращает последние решения
func (fs *FileStorage) Recent(ctx context.Context, limit int) ([]models.Decision, error) {
	return fs.memory.Recent(ctx, limit)
}

// Close закрывает файл
func (fs *FileStorage) Close() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	return fs.file.Close()
}
