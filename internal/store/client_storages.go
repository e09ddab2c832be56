package store

import (
	"context"
	"fmt"

	"github.com/buildnote/draftkeeper/internal/config"
	"github.com/buildnote/draftkeeper/internal/logger"
)

// ClientStorages groups all client-side storage repositories into a single
// value that can be passed around the service layer. Currently it holds only
// [DraftRepository]; additional repositories can be added as the feature set
// grows.
type ClientStorages struct {
	// DraftRepository is the SQLite-backed store for unsaved editing
	// sessions on this device.
	DraftRepository DraftRepository
}

// NewClientStorages initialises the client storage layer:
//  1. Opens an SQLite connection to the file specified in cfg.DSN, creating
//     the database file if it does not yet exist.
//  2. Bootstraps the draft schema via [DB.MigrateDrafts].
//  3. Returns a [ClientStorages] wired to a fresh [DraftRepository].
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.MigrateDrafts(context.Background()); err != nil {
		return nil, fmt.Errorf("draft schema bootstrap failed: %w", err)
	}

	return &ClientStorages{
		DraftRepository: NewLocalDraftRepository(db, logger),
	}, nil
}
