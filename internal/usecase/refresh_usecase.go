package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"venture-match/internal/domain/matching"
	"venture-match/internal/domain/profile"
	"venture-match/internal/repository"
	"venture-match/internal/worker"

	"github.com/google/uuid"
)

// RefreshResult reports how far a batch refresh got. Partial=true means a
// storage failure interrupted the scan; rows upserted before the failure
// remain valid and a retry is idempotent.
type RefreshResult struct {
	Scored  int
	Skipped int
	Pages   int
	Partial bool
}

type MatchRefreshUsecase interface {
	RefreshMatches(ctx context.Context, profileID uuid.UUID, t profile.Type) (RefreshResult, error)
}

// MatchRefresh materializes match rows for one profile by scanning the
// opposite population in cursor-paged batches. Scoring within a page is
// fanned out over a worker pool; the storage upsert keyed on (startup_id,
// investor_id) is the only serialization point, so concurrent refreshes of
// the same profile cannot duplicate rows.
type MatchRefresh struct {
	profiles repository.ProfileRepository
	matches  repository.MatchRepository
	cache    RecommendationCache
	logger   *log.Logger

	batchSize int
	workers   int
}

func NewMatchRefreshUsecase(
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	cache RecommendationCache,
	logger *log.Logger,
	batchSize, workers int,
) *MatchRefresh {
	if batchSize <= 0 {
		batchSize = 200
	}
	if workers <= 0 {
		workers = 1
	}
	return &MatchRefresh{
		profiles:  profiles,
		matches:   matches,
		cache:     cache,
		logger:    logger,
		batchSize: batchSize,
		workers:   workers,
	}
}

func (u *MatchRefresh) RefreshMatches(ctx context.Context, profileID uuid.UUID, t profile.Type) (RefreshResult, error) {
	if profileID == uuid.Nil {
		return RefreshResult{}, ErrProfileNotFound
	}

	var res RefreshResult
	var err error
	switch t {
	case profile.TypeStartup:
		res, err = u.refreshForStartup(ctx, profileID)
	case profile.TypeInvestor:
		res, err = u.refreshForInvestor(ctx, profileID)
	default:
		return RefreshResult{}, ErrInvalidInput
	}
	if err != nil {
		return res, err
	}

	u.invalidate(ctx, t, profileID)
	return res, nil
}

func (u *MatchRefresh) refreshForStartup(ctx context.Context, startupID uuid.UUID) (RefreshResult, error) {
	var res RefreshResult

	s, err := u.profiles.GetStartup(ctx, startupID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return res, ErrProfileNotFound
		}
		return res, fmt.Errorf("%w: get startup: %v", ErrStoreUnavailable, err)
	}

	own, err := matching.ExtractStartup(s)
	if err != nil {
		return res, ErrProfileIncomplete
	}

	cursor := uuid.Nil
	for {
		invs, next, err := u.profiles.ListInvestors(ctx, cursor, u.batchSize)
		if err != nil {
			res.Partial = true
			return res, fmt.Errorf("%w: list investors: %v", ErrStoreUnavailable, err)
		}
		if len(invs) == 0 {
			break
		}

		ups, skipped := u.scoreInvestorPage(ctx, own, invs)
		res.Skipped += skipped

		if err := u.matches.UpsertBatch(ctx, ups); err != nil {
			res.Partial = true
			return res, fmt.Errorf("%w: upsert matches: %v", ErrStoreUnavailable, err)
		}
		res.Scored += len(ups)
		res.Pages++

		if err := ctx.Err(); err != nil {
			res.Partial = true
			return res, err
		}
		if next == uuid.Nil {
			break
		}
		cursor = next
	}

	return res, nil
}

func (u *MatchRefresh) refreshForInvestor(ctx context.Context, investorID uuid.UUID) (RefreshResult, error) {
	var res RefreshResult

	inv, err := u.profiles.GetInvestor(ctx, investorID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return res, ErrProfileNotFound
		}
		return res, fmt.Errorf("%w: get investor: %v", ErrStoreUnavailable, err)
	}

	own, err := matching.ExtractInvestor(inv)
	if err != nil {
		return res, ErrProfileIncomplete
	}

	cursor := uuid.Nil
	for {
		startups, next, err := u.profiles.ListStartups(ctx, cursor, u.batchSize)
		if err != nil {
			res.Partial = true
			return res, fmt.Errorf("%w: list startups: %v", ErrStoreUnavailable, err)
		}
		if len(startups) == 0 {
			break
		}

		ups, skipped := u.scoreStartupPage(ctx, own, startups)
		res.Skipped += skipped

		if err := u.matches.UpsertBatch(ctx, ups); err != nil {
			res.Partial = true
			return res, fmt.Errorf("%w: upsert matches: %v", ErrStoreUnavailable, err)
		}
		res.Scored += len(ups)
		res.Pages++

		if err := ctx.Err(); err != nil {
			res.Partial = true
			return res, err
		}
		if next == uuid.Nil {
			break
		}
		cursor = next
	}

	return res, nil
}

// scoreInvestorPage scores one startup feature vector against a page of
// investors. Pair failures are isolated: an unscoreable investor is counted
// as skipped, never aborts the page.
func (u *MatchRefresh) scoreInvestorPage(ctx context.Context, own matching.FeatureVector, invs []profile.Investor) ([]repository.MatchUpsert, int) {
	now := time.Now().UTC()
	pool := worker.New(u.workers, len(invs))

	var mu sync.Mutex
	ups := make([]repository.MatchUpsert, 0, len(invs))
	skipped := 0

	for _, inv := range invs {
		inv := inv
		pool.Submit(func(context.Context) error {
			fv, err := matching.ExtractInvestor(inv)
			if err != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			result := matching.Score(own, fv)
			mu.Lock()
			ups = append(ups, repository.MatchUpsert{
				StartupID:  own.ProfileID,
				InvestorID: inv.ID,
				Percentage: result.Percentage,
				ScoredAt:   now,
			})
			mu.Unlock()
			return nil
		})
	}
	pool.Close()
	for range pool.Run(ctx) {
	}

	return ups, skipped
}

func (u *MatchRefresh) scoreStartupPage(ctx context.Context, own matching.FeatureVector, startups []profile.Startup) ([]repository.MatchUpsert, int) {
	now := time.Now().UTC()
	pool := worker.New(u.workers, len(startups))

	var mu sync.Mutex
	ups := make([]repository.MatchUpsert, 0, len(startups))
	skipped := 0

	for _, s := range startups {
		s := s
		pool.Submit(func(context.Context) error {
			fv, err := matching.ExtractStartup(s)
			if err != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			result := matching.Score(fv, own)
			mu.Lock()
			ups = append(ups, repository.MatchUpsert{
				StartupID:  s.ID,
				InvestorID: own.ProfileID,
				Percentage: result.Percentage,
				ScoredAt:   now,
			})
			mu.Unlock()
			return nil
		})
	}
	pool.Close()
	for range pool.Run(ctx) {
	}

	return ups, skipped
}

func (u *MatchRefresh) invalidate(ctx context.Context, t profile.Type, profileID uuid.UUID) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, RecommendationCachePattern(t, profileID)); err != nil && u.logger != nil {
		u.logger.Printf("[Match] cache invalidation error profile=%s err=%v", profileID, err)
	}
}
