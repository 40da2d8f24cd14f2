package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/lomoval/otus-golang/events_manager/internal/storage"
	memorystorage "github.com/lomoval/otus-golang/events_manager/internal/storage/memory"
	sqlstorage "github.com/lomoval/otus-golang/events_manager/internal/storage/sql"
)

const connectTimeout = 15 * time.Second

type Config struct {
	StorageType string
	Database    sqlstorage.Config
}

// New creates storage of the configured type and connects it.
func New(config Config) (storage.Storage, error) {
	var s storage.Storage
	switch config.StorageType {
	case "memory":
		s = memorystorage.New()
	case "sqlite":
		config.Database.Driver = sqlstorage.DriverSQLite
		s = sqlstorage.New(config.Database)
	case "postgres":
		config.Database.Driver = sqlstorage.DriverPostgres
		s = sqlstorage.New(config.Database)
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.StorageType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s storage: %w", config.StorageType, err)
	}
	return s, nil
}
