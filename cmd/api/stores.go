package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"pdfvault/internal/config"
	"pdfvault/internal/database"
	"pdfvault/internal/database/migration"
	"pdfvault/internal/repository"
	"pdfvault/internal/repository/memory"
	"pdfvault/internal/repository/mongodb"
	"pdfvault/internal/repository/postgres"
	"pdfvault/internal/storage"
)

// Store constructors used by run.
var (
	openBlobs = openBlobStore
	openRepo  = openRepository
)

// openBlobStore builds the blob store named by BLOB_DRIVER. The returned
// closer is nil when the store holds no resources.
func openBlobStore(cfg config.StorageConfig, minioCfg config.MinIOConfig, logger *slog.Logger) (storage.BlobStore, io.Closer, error) {
	switch cfg.BlobDriver {
	case config.BlobDriverDisk:
		disk, err := storage.NewDisk(cfg.BlobRoot, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := disk.Init(); err != nil {
			return nil, nil, err
		}
		return disk, nil, nil
	case config.BlobDriverMemory:
		logger.Warn("blob store is in memory, content is lost on exit")
		mem := storage.NewMemory()
		return mem, mem, nil
	case config.BlobDriverMinIO:
		s, err := storage.NewMinIO(minioCfg)
		return s, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}

// openRepository builds the metadata store named by METADATA_DRIVER and
// prepares its schema or indexes.
func openRepository(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (repository.DocumentRepository, error) {
	switch cfg.Storage.MetadataDriver {
	case config.MetadataDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, err
		}
		return postgres.NewDocumentPostgres(db), nil
	case config.MetadataDriverMongo:
		mdb, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		repo := mongodb.NewDocumentMongo(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("mongo metadata store ready", "database", cfg.Mongo.Database)
		return repo, nil
	case config.MetadataDriverMemory:
		logger.Warn("metadata store is in memory, records are lost on exit")
		return memory.NewDocumentMemory(), nil
	default:
		return nil, fmt.Errorf("unknown metadata driver %q", cfg.Storage.MetadataDriver)
	}
}
