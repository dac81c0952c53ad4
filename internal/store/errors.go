package store

import apperrors "github.com/bookdamapp/bookdam-server/internal/errors"

// Sentinel errors shared with the service layer.
var (
	ErrNotFound      = apperrors.ErrNotFound
	ErrAlreadyExists = apperrors.ErrAlreadyExists
)
