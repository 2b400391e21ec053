package usecase

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrInvalidInput = errors.New("invalid input")

	ErrProfileNotFound = errors.New("profile not found")
	ErrMatchNotFound   = errors.New("match not found")

	// ErrProfileIncomplete means the requesting profile lacks every scoring
	// attribute; nothing can be materialized for it yet.
	ErrProfileIncomplete = errors.New("profile incomplete for scoring")

	// ErrInvalidPagination covers negative page/size and sizes above the
	// configured maximum. Rejected before any scoring work starts.
	ErrInvalidPagination = errors.New("invalid pagination")

	// ErrStoreUnavailable wraps storage failures during a batch refresh.
	// Progress already upserted stays valid; retrying is idempotent.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrRefreshTokenExpired    = errors.New("refresh token expired")
)
