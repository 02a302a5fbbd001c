package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateKey is reported when an insert collides with an existing
// primary key. With service-generated UUIDs this indicates a generation or
// store fault rather than a client error.
var ErrDuplicateKey = errors.New("duplicate key")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
