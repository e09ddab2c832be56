package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/models"
)

type localDraftRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

// NewLocalDraftRepository constructs the SQLite-backed [DraftRepository].
func NewLocalDraftRepository(db *DB, logger *logger.Logger) DraftRepository {
	return &localDraftRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Save implements [DraftRepository]. The draft's SavedAt is stamped here, at
// the moment of the write, not when the edit happened.
func (l *localDraftRepository) Save(ctx context.Context, draft models.Draft) error {
	log := logger.FromContext(ctx)

	draft.SavedAt = l.now()

	result, err := l.DB.ExecContext(ctx, saveDraft,
		draft.ResourceID,
		[]byte(draft.Payload),
		draft.ObjectCount,
		draft.BaseUpdatedAt,
		draft.SavedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "localDraftRepository.Save").
			Str("resource_id", draft.ResourceID).
			Msg("failed to execute upsert for draft")
		return fmt.Errorf("failed to save draft (resource_id=%s): %w", draft.ResourceID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "localDraftRepository.Save").
			Str("resource_id", draft.ResourceID).
			Msg("failed to get rows affected after draft upsert")
		return fmt.Errorf("failed to get rows affected (resource_id=%s): %w", draft.ResourceID, err)
	}

	if rowsAffected == 0 {
		log.Error().
			Str("func", "localDraftRepository.Save").
			Str("resource_id", draft.ResourceID).
			Msg("draft upsert affected no rows")
		return ErrDraftNotWritten
	}

	return nil
}

// Get implements [DraftRepository]. A missing draft yields (nil, nil).
func (l *localDraftRepository) Get(ctx context.Context, resourceID string) (*models.Draft, error) {
	log := logger.FromContext(ctx)

	var draft models.Draft
	var payload []byte

	row := l.DB.QueryRowContext(ctx, getDraft, resourceID)
	scanErr := row.Scan(
		&draft.ResourceID,
		&payload,
		&draft.ObjectCount,
		&draft.BaseUpdatedAt,
		&draft.SavedAt,
	)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, nil
		}
		log.Err(scanErr).
			Str("func", "localDraftRepository.Get").
			Str("resource_id", resourceID).
			Msg("failed to scan draft row")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	draft.Payload = payload
	return &draft, nil
}

// Clear implements [DraftRepository]. Deleting an absent draft is a no-op.
func (l *localDraftRepository) Clear(ctx context.Context, resourceID string) error {
	log := logger.FromContext(ctx)

	_, err := l.DB.ExecContext(ctx, clearDraft, resourceID)
	if err != nil {
		log.Err(err).
			Str("func", "localDraftRepository.Clear").
			Str("resource_id", resourceID).
			Msg("failed to execute delete for draft")
		return fmt.Errorf("failed to clear draft (resource_id=%s): %w", resourceID, err)
	}

	return nil
}
