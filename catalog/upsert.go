package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type UpsertStatus string

const (
	StatusSuccess UpsertStatus = "success"
	StatusError   UpsertStatus = "error"
	StatusSkipped UpsertStatus = "skipped"
)

// UpsertResult is the outcome of one Persist call. Exactly one of the
// three statuses is set; Inserted is meaningful only on success.
type UpsertResult struct {
	Status   UpsertStatus `json:"status"`
	FileID   string       `json:"file_id,omitempty"`
	Inserted bool         `json:"inserted"`
	Message  string       `json:"message"`
	Err      string       `json:"error,omitempty"`
}

// StoreError classifies failures coming from the table store.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("table store %s failed: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// Persist runs the idempotent upsert for one inspection record. It
// never panics and never returns a raw error; every outcome is an
// UpsertResult.
//
// The protocol is SELECT-then-INSERT on (file_path_normalized,
// header_hash) inside a single transaction: row-id based UPDATE
// semantics of the target store are not relied on. On a hit the
// existing file_id is returned unchanged and the audit fields are
// touched best-effort; on a miss all four relations are inserted
// parent-first. Any failure after the transaction begins rolls the
// whole write back.
//
// Concurrency: Persist takes no locks. Two concurrent calls for the
// same dedup key can race between SELECT and INSERT; the composite
// unique index makes the losing insert fail, which surfaces here as a
// status=error result rather than a duplicate row. Persist is never
// interrupted mid-transaction by this package; callers wanting a
// deadline must impose it around the whole call.
func (s *Store) Persist(rec *Record) UpsertResult {
	if rec == nil || rec.File.Path == "" {
		verr := &ValidationError{Field: "file.path"}
		return UpsertResult{
			Status:  StatusError,
			Message: "invalid payload structure",
			Err:     verr.Error(),
		}
	}
	if s == nil || s.db == nil {
		return UpsertResult{
			Status:  StatusSkipped,
			Message: "table store not configured",
		}
	}

	embedding, err := MetadataEmbedding(rec, s.metadataDim)
	if err != nil {
		return UpsertResult{
			Status:  StatusError,
			Message: "vector embedding error",
			Err:     err.Error(),
		}
	}
	fingerprint, err := ChannelFingerprint(rec.Channels, s.channelDim)
	if err != nil {
		return UpsertResult{
			Status:  StatusError,
			Message: "vector embedding error",
			Err:     err.Error(),
		}
	}

	rows, err := projectRows(rec, embedding, fingerprint, "", s.schemaVersion, s.now())
	if err != nil {
		return UpsertResult{
			Status:  StatusError,
			Message: "invalid payload structure",
			Err:     err.Error(),
		}
	}

	result := UpsertResult{Status: StatusError}
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var existing FileRecord
		err := tx.Where("file_path_normalized = ? AND header_hash = ?",
			rows.file.FilePathNormalized, rows.file.HeaderHash).
			First(&existing).Error
		if err == nil {
			// Idempotent hit: the stored file_id stays authoritative so
			// children rows are never renumbered.
			result = UpsertResult{
				Status:   StatusSuccess,
				FileID:   existing.FileID,
				Inserted: false,
				Message:  fmt.Sprintf("file already persisted: %s", existing.FileID),
			}
			s.touchAudit(tx, existing.FileID)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return &StoreError{Op: "select", Cause: err}
		}

		if err := tx.Create(&rows.file).Error; err != nil {
			return &StoreError{Op: "insert files", Cause: err}
		}
		if len(rows.parts) > 0 {
			if err := tx.Create(&rows.parts).Error; err != nil {
				return &StoreError{Op: "insert parts", Cause: err}
			}
		}
		if len(rows.channels) > 0 {
			if err := tx.Create(&rows.channels).Error; err != nil {
				return &StoreError{Op: "insert channels", Cause: err}
			}
		}
		if len(rows.attributes) > 0 {
			if err := tx.Create(&rows.attributes).Error; err != nil {
				return &StoreError{Op: "insert attributes", Cause: err}
			}
		}
		result = UpsertResult{
			Status:   StatusSuccess,
			FileID:   rows.file.FileID,
			Inserted: true,
			Message:  fmt.Sprintf("file persisted: %s", rows.file.FileID),
		}
		return nil
	})
	if txErr != nil {
		s.debugf("persist transaction failed path=%q err=%v", rec.File.Path, txErr)
		return UpsertResult{
			Status:  StatusError,
			Message: "persistence failed",
			Err:     txErr.Error(),
		}
	}
	return result
}

// touchAudit bumps last_inspected and the inspection counter on the
// idempotent-hit path. It is fire-and-forget: a failure here is logged
// and must not fail the surrounding transaction or change the reported
// status.
func (s *Store) touchAudit(tx *gorm.DB, fileID string) {
	err := tx.Model(&FileRecord{}).
		Where("file_id = ?", fileID).
		Updates(map[string]any{
			"last_inspected":   s.now(),
			"inspection_count": gorm.Expr("inspection_count + 1"),
		}).Error
	if err != nil {
		s.debugf("audit field update failed file_id=%s err=%v", fileID, err)
	}
}
