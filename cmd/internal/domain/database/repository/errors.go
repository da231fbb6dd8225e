package repository

import (
	"fmt"
	"strings"

	"notehistory/cmd/internal/domain/entity"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// wrap annotates err with the failed operation and tags constraint failures
// with entity.ErrConstraintViolation.
func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if isConstraintError(err) {
		err = fmt.Errorf("%w: %w", entity.ErrConstraintViolation, err)
	}
	return errors.Wrap(err, op)
}

func isConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	// Drivers without an error translator.
	msg := err.Error()
	return strings.Contains(msg, "constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "SQLSTATE 23503")
}
