package match

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("match not found")

// Match is the persisted compatibility score for one (startup, investor)
// pair. At most one row exists per pair; re-scoring overwrites in place.
type Match struct {
	ID         uuid.UUID
	StartupID  uuid.UUID
	InvestorID uuid.UUID
	Percentage int
	ScoredAt   time.Time
}
