package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"venture-match/internal/domain/profile"
	"venture-match/internal/repository"

	"github.com/google/uuid"
)

type RecommendationParams struct {
	Page     int
	PageSize int
}

type RecommendationItem struct {
	ProfileID       uuid.UUID `json:"profile_id"`
	Name            string    `json:"name"`
	MatchPercentage int       `json:"match_percentage"`
	Industries      []string  `json:"industries"`
	Regions         []string  `json:"regions"`
	Stage           string    `json:"stage,omitempty"`
	ScoredAt        time.Time `json:"scored_at"`
}

type RecommendationPage struct {
	Items      []RecommendationItem `json:"items"`
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
}

type RecommendationUsecase interface {
	GetRecommendations(ctx context.Context, profileID uuid.UUID, t profile.Type, params RecommendationParams) (RecommendationPage, error)
}

// Recommendation reads materialized match rows in ranked order. A cold
// start or stale rows trigger a bounded-time refresh first; if that refresh
// fails or times out the read degrades to whatever rows exist instead of
// failing the request.
type Recommendation struct {
	profiles  repository.ProfileRepository
	matches   repository.MatchRepository
	refresher MatchRefreshUsecase
	cache     RecommendationCache
	logger    *log.Logger

	freshness       time.Duration
	refreshTimeout  time.Duration
	defaultPageSize int
	maxPageSize     int
	cacheTTL        time.Duration
}

func NewRecommendationUsecase(
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	refresher MatchRefreshUsecase,
	cache RecommendationCache,
	logger *log.Logger,
	freshness, refreshTimeout time.Duration,
	defaultPageSize, maxPageSize int,
	cacheTTL time.Duration,
) *Recommendation {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	if refreshTimeout <= 0 {
		refreshTimeout = 10 * time.Second
	}
	return &Recommendation{
		profiles:        profiles,
		matches:         matches,
		refresher:       refresher,
		cache:           cache,
		logger:          logger,
		freshness:       freshness,
		refreshTimeout:  refreshTimeout,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		cacheTTL:        cacheTTL,
	}
}

func (u *Recommendation) GetRecommendations(ctx context.Context, profileID uuid.UUID, t profile.Type, params RecommendationParams) (RecommendationPage, error) {
	if profileID == uuid.Nil {
		return RecommendationPage{}, ErrProfileNotFound
	}
	if t != profile.TypeStartup && t != profile.TypeInvestor {
		return RecommendationPage{}, ErrInvalidInput
	}

	page := params.Page
	if page == 0 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize == 0 {
		pageSize = u.defaultPageSize
	}
	if page < 1 || pageSize < 1 || pageSize > u.maxPageSize {
		return RecommendationPage{}, ErrInvalidPagination
	}

	updatedAt, err := u.profileUpdatedAt(ctx, profileID, t)
	if err != nil {
		return RecommendationPage{}, err
	}

	u.ensureFresh(ctx, profileID, t, updatedAt)

	key := RecommendationCacheKey(t, profileID, page, pageSize)
	if u.cache != nil {
		var cached RecommendationPage
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	total, err := u.matches.CountForProfile(ctx, profileID, t)
	if err != nil {
		return RecommendationPage{}, errors.Join(ErrStoreUnavailable, err)
	}

	offset := (page - 1) * pageSize
	out := RecommendationPage{
		Items:      []RecommendationItem{},
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}

	// Past-the-end pages are a normal boundary, not a fault.
	if offset < total {
		ranked, err := u.matches.ListRanked(ctx, profileID, t, pageSize, offset)
		if err != nil {
			return RecommendationPage{}, errors.Join(ErrStoreUnavailable, err)
		}
		for _, rm := range ranked {
			out.Items = append(out.Items, RecommendationItem{
				ProfileID:       rm.CounterpartID,
				Name:            rm.CounterpartName,
				MatchPercentage: rm.Percentage,
				Industries:      rm.Industries,
				Regions:         rm.Regions,
				Stage:           rm.Stage,
				ScoredAt:        rm.ScoredAt,
			})
		}
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, out, u.cacheTTL)
	}

	return out, nil
}

func (u *Recommendation) profileUpdatedAt(ctx context.Context, profileID uuid.UUID, t profile.Type) (time.Time, error) {
	if t == profile.TypeStartup {
		s, err := u.profiles.GetStartup(ctx, profileID)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				return time.Time{}, ErrProfileNotFound
			}
			return time.Time{}, errors.Join(ErrStoreUnavailable, err)
		}
		return s.UpdatedAt, nil
	}

	inv, err := u.profiles.GetInvestor(ctx, profileID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return time.Time{}, ErrProfileNotFound
		}
		return time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	return inv.UpdatedAt, nil
}

// ensureFresh refreshes matches when none exist yet, when the profile was
// edited after the last scoring pass, or when the freshness window elapsed.
// Any refresh failure degrades to serving existing rows.
func (u *Recommendation) ensureFresh(ctx context.Context, profileID uuid.UUID, t profile.Type, updatedAt time.Time) {
	if u.refresher == nil {
		return
	}

	newest, err := u.matches.NewestScoredAt(ctx, profileID, t)
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Recs] staleness check error profile=%s err=%v", profileID, err)
		}
		return
	}

	stale := newest.IsZero() ||
		newest.Before(updatedAt) ||
		(u.freshness > 0 && time.Since(newest) > u.freshness)
	if !stale {
		return
	}

	// Dedupe concurrent refreshes of the same profile across instances.
	if u.cache != nil {
		ok, err := u.cache.SetIfNotExists(ctx, RefreshLockKey(t, profileID), "1", u.refreshTimeout)
		if err == nil && !ok {
			return
		}
	}

	rctx, cancel := context.WithTimeout(ctx, u.refreshTimeout)
	defer cancel()

	res, err := u.refresher.RefreshMatches(rctx, profileID, t)
	if err != nil && u.logger != nil {
		u.logger.Printf("[Recs] refresh degraded profile=%s scored=%d pages=%d partial=%v err=%v",
			profileID, res.Scored, res.Pages, res.Partial, err)
	}
}
