// Package storage хранит журнал решений фильтра: в PostgreSQL, в файле или в памяти.
package storage

import (
	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"go.uber.org/zap"
)

// NewStorage выбирает хранилище по конфигурации:
// PostgreSQL при заданном DatabaseDSN, файл при FileStoragePath, иначе память.
func NewStorage(cfg *config.Config, logger *zap.Logger) (DecisionStorage, error) {
	switch {
	case cfg.DatabaseDSN != "":
		logger.Info("Using PostgreSQL decision storage")
		ps, err := NewPostgresStorage(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return ps, nil
	case cfg.FileStoragePath != "":
		logger.Info("Using file decision storage", zap.String("path", cfg.FileStoragePath))
		fs, err := NewFileStorage(cfg.FileStoragePath, logger)
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		logger.Info("Using in-memory decision storage")
		return NewMemoryStorage(DefaultMemoryCapacity), nil
	}
}
