// Package storage picks the repository.Store implementation from configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/repository/memory"
	"github.com/tiffinwala/tiffin/internal/repository/mongodb"
)

// Open builds the store selected by STORAGE_DRIVER.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Storage.Driver {
	case config.StorageMongo:
		store, err := mongodb.Connect(ctx, cfg.MongoDB, logger.Named("mongodb"))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		logger.Info("using mongodb storage", zap.String("db", cfg.MongoDB.DBName))
		return store, nil
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
