// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const (
	getAnnotationSet = `
		SELECT resource_id, payload, object_count, created_at, updated_at
		FROM annotation_sets
		WHERE resource_id = $1;`

	getAnnotationSnapshot = `
		SELECT resource_id, object_count, updated_at
		FROM annotation_sets
		WHERE resource_id = $1;`

	// createAnnotationSet inserts a brand-new annotation set. ON CONFLICT DO
	// NOTHING makes a lost race visible: when another session created the
	// resource first, no row comes back and the caller reports a conflict.
	createAnnotationSet = `
		INSERT INTO annotation_sets (resource_id, payload, object_count, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (resource_id) DO NOTHING
		RETURNING updated_at;`

	// saveAnnotationSetCAS is the compare-and-swap update. The CTE returns
	// both the attempted update's result and the row's current state, letting
	// the caller distinguish three outcomes from a single round trip:
	//   - no row at all            → resource not found
	//   - new_updated_at NULL      → version mismatch (current state returned)
	//   - new_updated_at non-NULL  → success (new token returned)
	saveAnnotationSetCAS = `
		WITH target_record AS (
			SELECT updated_at, object_count
			FROM annotation_sets
			WHERE resource_id = $1
		), updated AS (
			UPDATE annotation_sets
			SET payload = $2, object_count = $3, updated_at = NOW()
			WHERE resource_id = $1 AND updated_at = $4
			RETURNING updated_at
		)
		SELECT u.updated_at, t.updated_at, t.object_count
		FROM target_record t
		LEFT JOIN updated u ON TRUE;`

	// deleteAnnotationSetCAS mirrors saveAnnotationSetCAS for removal.
	deleteAnnotationSetCAS = `
		WITH target_record AS (
			SELECT updated_at, object_count
			FROM annotation_sets
			WHERE resource_id = $1
		), removed AS (
			DELETE FROM annotation_sets
			WHERE resource_id = $1 AND updated_at = $2
			RETURNING resource_id
		)
		SELECT r.resource_id, t.updated_at, t.object_count
		FROM target_record t
		LEFT JOIN removed r ON TRUE;`
)

// buildListQuery builds the per-project snapshot listing. Resource ids are
// namespaced with "/" separators, so a project filter is a prefix match.
func buildListQuery(project string) (string, []any, error) {
	qb := sq.Select("resource_id", "object_count", "updated_at").
		From("annotation_sets").
		OrderBy("resource_id").
		PlaceholderFormat(sq.Dollar)

	if project != "" {
		qb = qb.Where(sq.Like{"resource_id": project + "/%"})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
