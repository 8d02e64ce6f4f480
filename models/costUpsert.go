package models

import (
	"errors"

	"gorm.io/gorm"
)

// costUpsertAction is what a monthly-cost upsert should do after reading the
// existing (entity, month) row.
type costUpsertAction int

const (
	costUpsertNoop costUpsertAction = iota
	costUpsertDelete
	costUpsertCreate
	costUpsertUpdate
)

// classifyCostUpsert maps the read result and the input's zero-diff flag onto
// an action. Only gorm.ErrRecordNotFound means "row absent"; any other read
// error aborts the upsert so a transient failure is never reported as a
// successful collapse or turned into a blind create.
func classifyCostUpsert(readErr error, zeroDiff bool) (costUpsertAction, error) {
	if readErr != nil && !errors.Is(readErr, gorm.ErrRecordNotFound) {
		return costUpsertNoop, readErr
	}
	absent := readErr != nil
	switch {
	case zeroDiff && absent:
		return costUpsertNoop, nil
	case zeroDiff:
		return costUpsertDelete, nil
	case absent:
		return costUpsertCreate, nil
	default:
		return costUpsertUpdate, nil
	}
}
