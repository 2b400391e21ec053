package usecase

import (
	"context"
	"errors"

	"venture-match/internal/domain/matching"
	"venture-match/internal/domain/profile"
	"venture-match/internal/repository"

	"github.com/google/uuid"
)

type PairMatchUsecase interface {
	CalculateMatch(ctx context.Context, startupID, investorID uuid.UUID) (matching.Result, error)
}

// PairMatch scores a single (startup, investor) pair on demand, returning
// the factor breakdown. It does not touch the match table.
type PairMatch struct {
	profiles repository.ProfileRepository
}

func NewPairMatchUsecase(profiles repository.ProfileRepository) *PairMatch {
	return &PairMatch{profiles: profiles}
}

func (u *PairMatch) CalculateMatch(ctx context.Context, startupID, investorID uuid.UUID) (matching.Result, error) {
	if startupID == uuid.Nil || investorID == uuid.Nil {
		return matching.Result{}, ErrProfileNotFound
	}

	s, err := u.profiles.GetStartup(ctx, startupID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return matching.Result{}, ErrProfileNotFound
		}
		return matching.Result{}, ErrInternal
	}

	inv, err := u.profiles.GetInvestor(ctx, investorID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return matching.Result{}, ErrProfileNotFound
		}
		return matching.Result{}, ErrInternal
	}

	sfv, err := matching.ExtractStartup(s)
	if err != nil {
		return matching.Result{}, ErrProfileIncomplete
	}
	ifv, err := matching.ExtractInvestor(inv)
	if err != nil {
		return matching.Result{}, ErrProfileIncomplete
	}

	return matching.Score(sfv, ifv), nil
}
