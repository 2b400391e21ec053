package usecase

import (
	"context"
	"log"
	"time"

	"venture-match/internal/domain/profile"
	"venture-match/internal/repository"

	"github.com/google/uuid"
)

// FreshnessService triggers background match refreshes after profile edits
// so the next recommendation read finds warm rows. Best-effort: a missed
// trigger only means the read path refreshes synchronously instead.
type FreshnessService struct {
	matches   repository.MatchRepository
	refresher MatchRefreshUsecase
	cache     RecommendationCache
	logger    *log.Logger
	threshold time.Duration
}

func NewFreshnessService(
	matches repository.MatchRepository,
	refresher MatchRefreshUsecase,
	cache RecommendationCache,
	logger *log.Logger,
	threshold time.Duration,
) *FreshnessService {
	if threshold <= 0 {
		threshold = 30 * time.Minute
	}
	return &FreshnessService{
		matches:   matches,
		refresher: refresher,
		cache:     cache,
		logger:    logger,
		threshold: threshold,
	}
}

func (s *FreshnessService) EnsureFresh(ctx context.Context, profileID uuid.UUID, t profile.Type, editedAt time.Time) {
	if s == nil || s.refresher == nil || s.matches == nil {
		return
	}
	if profileID == uuid.Nil {
		return
	}

	newest, err := s.matches.NewestScoredAt(ctx, profileID, t)
	if err != nil {
		return
	}

	stale := newest.IsZero() || newest.Before(editedAt) || time.Since(newest) > s.threshold
	if !stale {
		return
	}
	if s.logger != nil {
		s.logger.Printf("[Match] stale detected profile=%s type=%s newest=%v threshold=%s", profileID, t, newest, s.threshold)
	}

	lockAcquired := true
	if s.cache != nil {
		ok, err := s.cache.SetIfNotExists(ctx, RefreshLockKey(t, profileID), "1", 2*time.Minute)
		if err == nil {
			lockAcquired = ok
		}
	}
	if !lockAcquired {
		return
	}

	go func() {
		ctx2, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		res, err := s.refresher.RefreshMatches(ctx2, profileID, t)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("[Match] background refresh error profile=%s type=%s err=%v", profileID, t, err)
			}
			return
		}
		if s.logger != nil {
			s.logger.Printf("[Match] background refresh done profile=%s type=%s scored=%d skipped=%d pages=%d",
				profileID, t, res.Scored, res.Skipped, res.Pages)
		}
	}()
}
