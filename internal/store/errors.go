package store

import (
	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/cockroachdb/errors"
)

// ErrPersistence marks storage failures. The operation did not take effect.
var ErrPersistence = errors.New("persistence failure")

var (
	ErrDocumentNotFound = bracket.MarkCategory(errors.New("document not found"), bracket.ErrNotFound)
	ErrUserNotFound     = bracket.MarkCategory(errors.New("user not found"), bracket.ErrNotFound)
)

func persistenceError(err error, msg string, args ...any) error {
	return bracket.MarkCategory(errors.Wrapf(err, msg, args...), ErrPersistence)
}
