package entity

import "errors"

var (
	// ErrEmptySnapshot is returned when a version would be stored without a title or content.
	ErrEmptySnapshot = errors.New("version title and content must not be empty")

	// ErrVersionImmutable is returned on any attempt to rewrite a stored version.
	ErrVersionImmutable = errors.New("versions cannot be modified")

	// ErrConstraintViolation wraps foreign-key and uniqueness failures reported by the database.
	ErrConstraintViolation = errors.New("constraint violation")
)
