// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/models"
)

type annotationRepository struct {
	*DB
	classifier *PostgresErrorClassifier
}

func newAnnotationRepository(db *DB) *annotationRepository {
	return &annotationRepository{DB: db, classifier: NewPostgresErrorClassifier()}
}

// withRetry runs op, retrying once after a short pause when the failure is
// classified as transient (connection loss, deadlock rollback).
func (p *annotationRepository) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(100*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && p.classifier.Classify(err) == Retryable {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (p *annotationRepository) Get(ctx context.Context, resourceID string) (models.AnnotationSet, error) {
	log := logger.FromContext(ctx)

	var set models.AnnotationSet
	err := p.withRetry(ctx, func(ctx context.Context) error {
		row := p.DB.QueryRowContext(ctx, getAnnotationSet, resourceID)
		return row.Scan(&set.ResourceID, &set.Payload, &set.ObjectCount, &set.CreatedAt, &set.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AnnotationSet{}, ErrAnnotationNotFound
		}
		log.Err(err).
			Str("func", "annotationRepository.Get").
			Str("resource_id", resourceID).
			Msg("failed to query annotation set")
		return models.AnnotationSet{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return set, nil
}

func (p *annotationRepository) GetSnapshot(ctx context.Context, resourceID string) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	var snap models.Snapshot
	err := p.withRetry(ctx, func(ctx context.Context) error {
		row := p.DB.QueryRowContext(ctx, getAnnotationSnapshot, resourceID)
		return row.Scan(&snap.ResourceID, &snap.ObjectCount, &snap.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, ErrAnnotationNotFound
		}
		log.Err(err).
			Str("func", "annotationRepository.GetSnapshot").
			Str("resource_id", resourceID).
			Msg("failed to query annotation snapshot")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return snap, nil
}

func (p *annotationRepository) List(ctx context.Context, project string) ([]models.Snapshot, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListQuery(project)
	if err != nil {
		log.Err(err).
			Str("func", "annotationRepository.List").
			Str("project", project).
			Msg("failed to build list query")
		return nil, err
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "annotationRepository.List").
			Str("project", project).
			Msg("failed to execute list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if scanErr := rows.Scan(&snap.ResourceID, &snap.ObjectCount, &snap.UpdatedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "annotationRepository.List").
				Msg("failed to scan snapshot row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		snaps = append(snaps, snap)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "annotationRepository.List").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return snaps, nil
}

// Save implements [AnnotationRepository]. The nil-token path inserts; the
// non-nil path runs the compare-and-swap update and inspects the CTE result
// to distinguish success, not-found and version conflict.
func (p *annotationRepository) Save(ctx context.Context, req models.SaveRequest) (models.Snapshot, error) {
	if req.ExpectedUpdatedAt == nil {
		return p.createAnnotation(ctx, req)
	}
	return p.updateAnnotationCAS(ctx, req)
}

func (p *annotationRepository) createAnnotation(ctx context.Context, req models.SaveRequest) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	var newUpdatedAt time.Time
	row := p.DB.QueryRowContext(ctx, createAnnotationSet, req.ResourceID, req.Payload, req.ObjectCount)
	err := row.Scan(&newUpdatedAt)
	if err == nil {
		log.Info().
			Str("func", "annotationRepository.createAnnotation").
			Str("resource_id", req.ResourceID).
			Msg("created new annotation set")
		return models.Snapshot{
			ResourceID:  req.ResourceID,
			ObjectCount: req.ObjectCount,
			UpdatedAt:   newUpdatedAt,
		}, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).
			Str("func", "annotationRepository.createAnnotation").
			Str("resource_id", req.ResourceID).
			Msg("failed to insert annotation set")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	// ON CONFLICT DO NOTHING swallowed the insert: the resource exists even
	// though the client presented no token. Report a conflict with the
	// current state so the client can reconcile.
	current, snapErr := p.GetSnapshot(ctx, req.ResourceID)
	if snapErr != nil {
		return models.Snapshot{}, snapErr
	}

	log.Warn().
		Str("func", "annotationRepository.createAnnotation").
		Str("resource_id", req.ResourceID).
		Time("db_updated_at", current.UpdatedAt).
		Msg("optimistic lock failed: resource already exists")

	return current, ErrVersionConflict
}

func (p *annotationRepository) updateAnnotationCAS(ctx context.Context, req models.SaveRequest) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	var newUpdatedAt *time.Time
	var currentUpdatedAt time.Time
	var currentCount int

	row := p.DB.QueryRowContext(ctx, saveAnnotationSetCAS,
		req.ResourceID, req.Payload, req.ObjectCount, *req.ExpectedUpdatedAt)
	err := row.Scan(&newUpdatedAt, &currentUpdatedAt, &currentCount)
	if err != nil {
		// target_record empty: resource does not exist
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().
				Str("func", "annotationRepository.updateAnnotationCAS").
				Str("resource_id", req.ResourceID).
				Msg("record not found")
			return models.Snapshot{}, ErrAnnotationNotFound
		}
		log.Err(err).
			Str("func", "annotationRepository.updateAnnotationCAS").
			Str("resource_id", req.ResourceID).
			Msg("failed to execute compare-and-swap update")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	// found but not updated: token mismatch
	if newUpdatedAt == nil {
		log.Warn().
			Str("func", "annotationRepository.updateAnnotationCAS").
			Str("resource_id", req.ResourceID).
			Time("db_updated_at", currentUpdatedAt).
			Time("provided_updated_at", *req.ExpectedUpdatedAt).
			Msg("optimistic lock failed: updated_at mismatch")
		return models.Snapshot{
			ResourceID:  req.ResourceID,
			ObjectCount: currentCount,
			UpdatedAt:   currentUpdatedAt,
		}, ErrVersionConflict
	}

	log.Info().
		Str("func", "annotationRepository.updateAnnotationCAS").
		Str("resource_id", req.ResourceID).
		Msg("successfully updated annotation set")

	return models.Snapshot{
		ResourceID:  req.ResourceID,
		ObjectCount: req.ObjectCount,
		UpdatedAt:   *newUpdatedAt,
	}, nil
}

// Delete implements [AnnotationRepository] with the same CAS contract as Save.
func (p *annotationRepository) Delete(ctx context.Context, req models.DeleteRequest) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	if req.ExpectedUpdatedAt == nil {
		return models.Snapshot{}, ErrAnnotationNotFound
	}

	var removedID *string
	var currentUpdatedAt time.Time
	var currentCount int

	row := p.DB.QueryRowContext(ctx, deleteAnnotationSetCAS, req.ResourceID, *req.ExpectedUpdatedAt)
	err := row.Scan(&removedID, &currentUpdatedAt, &currentCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().
				Str("func", "annotationRepository.Delete").
				Str("resource_id", req.ResourceID).
				Msg("record not found")
			return models.Snapshot{}, ErrAnnotationNotFound
		}
		log.Err(err).
			Str("func", "annotationRepository.Delete").
			Str("resource_id", req.ResourceID).
			Msg("failed to execute compare-and-swap delete")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if removedID == nil {
		log.Warn().
			Str("func", "annotationRepository.Delete").
			Str("resource_id", req.ResourceID).
			Time("db_updated_at", currentUpdatedAt).
			Time("provided_updated_at", *req.ExpectedUpdatedAt).
			Msg("optimistic lock failed: updated_at mismatch on delete")
		return models.Snapshot{
			ResourceID:  req.ResourceID,
			ObjectCount: currentCount,
			UpdatedAt:   currentUpdatedAt,
		}, ErrVersionConflict
	}

	log.Info().
		Str("func", "annotationRepository.Delete").
		Str("resource_id", req.ResourceID).
		Msg("successfully deleted annotation set")

	return models.Snapshot{}, nil
}
