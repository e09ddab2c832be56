// SPDX-License-Identifier: Apache-2.0

package store

const (
	createDraftsTable = `
		CREATE TABLE IF NOT EXISTS drafts (
			resource_id     TEXT PRIMARY KEY,
			payload         BLOB NOT NULL,
			object_count    INTEGER NOT NULL,
			base_updated_at TIMESTAMP,
			saved_at        TIMESTAMP NOT NULL
		);`

	saveDraft = `
		INSERT INTO drafts (
			resource_id,
			payload,
			object_count,
			base_updated_at,
			saved_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (resource_id) DO UPDATE SET
			payload         = excluded.payload,
			object_count    = excluded.object_count,
			base_updated_at = excluded.base_updated_at,
			saved_at        = excluded.saved_at;`

	getDraft = `
		SELECT
			resource_id,
			payload,
			object_count,
			base_updated_at,
			saved_at
		FROM drafts
		WHERE resource_id = $1;`

	clearDraft = `
		DELETE FROM drafts
		WHERE resource_id = $1;`
)
