package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrAnnotationNotFound is returned when a query or mutation targets a
	// resource that does not exist in the database.
	ErrAnnotationNotFound = errors.New("annotation set was not found")

	// ErrAnnotationNotSaved is returned when an INSERT completes without
	// error but affects zero rows, indicating nothing was persisted.
	ErrAnnotationNotSaved = errors.New("annotation set was not saved")

	// ErrVersionConflict is returned when the compare-and-swap check fails:
	// the expected_updated_at supplied by the client no longer matches the
	// updated_at stored in the database, meaning another session modified
	// the resource since the client last observed it.
	ErrVersionConflict = errors.New("annotation set version conflict occurred")

	// ErrDraftNotWritten is returned when a draft write affects zero rows.
	// Autosave treats it like any other storage failure and degrades with
	// a warning instead of losing the edit silently.
	ErrDraftNotWritten = errors.New("draft was not written")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
