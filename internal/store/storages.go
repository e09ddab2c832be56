package store

import (
	"context"

	"github.com/buildnote/draftkeeper/internal/config"
	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/migrations"
)

// Storages is the server-side storage layer.
type Storages struct {
	AnnotationRepository AnnotationRepository
}

// NewStorages connects to PostgreSQL, applies pending migrations, and builds
// the annotation repository on top of the connection.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg, log)
	if err != nil {
		log.Err(err).Msg("connection to database failed")
		return nil, err
	}

	if err = migrations.Migrate(db.DB); err != nil {
		log.Err(err).Msg("applying migrations failed")
		return nil, err
	}

	return &Storages{AnnotationRepository: newAnnotationRepository(db)}, nil
}
