package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"venture-match/internal/domain/profile"
	"venture-match/internal/repository"

	"github.com/google/uuid"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshMatches(context.Context, uuid.UUID, profile.Type) (RefreshResult, error) {
	f.calls++
	return RefreshResult{}, f.err
}

func rankedRow(pct int, updated time.Time) repository.RankedMatch {
	return repository.RankedMatch{
		CounterpartID:        uuid.New(),
		CounterpartName:      "Investor",
		Percentage:           pct,
		ScoredAt:             time.Now().UTC(),
		CounterpartUpdatedAt: updated,
	}
}

func recUsecase(profiles *fakeProfileRepo, matches *fakeMatchRepo, refresher *fakeRefresher) *Recommendation {
	return NewRecommendationUsecase(
		profiles, matches, refresher, nil, nil,
		30*time.Minute, time.Second, 20, 100, time.Minute,
	)
}

func TestRecommendation_RankingStability(t *testing.T) {
	s := scoreableStartup("Payline")
	s.UpdatedAt = time.Now().Add(-time.Hour)
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}

	now := time.Now().UTC()
	newer80 := rankedRow(80, now)
	older80 := rankedRow(80, now.Add(-time.Minute))
	matches := newFakeMatchRepo()
	matches.ranked = []repository.RankedMatch{older80, rankedRow(60, now), rankedRow(95, now), newer80}
	matches.newest = now

	uc := recUsecase(profiles, matches, &fakeRefresher{})

	page, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].MatchPercentage != 95 {
		t.Fatalf("expected 95 first, got %d", page.Items[0].MatchPercentage)
	}
	if page.Items[1].ProfileID != newer80.CounterpartID {
		t.Fatalf("tie should break by recency, got %s", page.Items[1].ProfileID)
	}
	if page.TotalCount != 4 {
		t.Fatalf("expected total 4, got %d", page.TotalCount)
	}

	page2, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if page2.Items[0].ProfileID != older80.CounterpartID || page2.Items[1].MatchPercentage != 60 {
		t.Fatalf("unexpected second page: %+v", page2.Items)
	}
}

func TestRecommendation_PastEndPage(t *testing.T) {
	s := scoreableStartup("Payline")
	s.UpdatedAt = time.Now().Add(-time.Hour)
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}

	now := time.Now().UTC()
	matches := newFakeMatchRepo()
	matches.ranked = []repository.RankedMatch{rankedRow(90, now), rankedRow(70, now), rankedRow(50, now), rankedRow(40, now)}
	matches.newest = now

	uc := recUsecase(profiles, matches, &fakeRefresher{})

	page, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{Page: 5, PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty items, got %v", page.Items)
	}
	if page.TotalCount != 4 {
		t.Fatalf("expected total 4, got %d", page.TotalCount)
	}
}

func TestRecommendation_InvalidPagination(t *testing.T) {
	s := scoreableStartup("Payline")
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}
	uc := recUsecase(profiles, newFakeMatchRepo(), &fakeRefresher{})

	cases := []RecommendationParams{
		{Page: -1, PageSize: 10},
		{Page: 1, PageSize: -5},
		{Page: 1, PageSize: 1000},
	}
	for _, params := range cases {
		if _, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, params); !errors.Is(err, ErrInvalidPagination) {
			t.Fatalf("params %+v: expected ErrInvalidPagination, got %v", params, err)
		}
	}
}

func TestRecommendation_DefaultsApplied(t *testing.T) {
	s := scoreableStartup("Payline")
	s.UpdatedAt = time.Now().Add(-time.Hour)
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}
	matches := newFakeMatchRepo()
	matches.newest = time.Now().UTC()

	uc := recUsecase(profiles, matches, &fakeRefresher{})

	page, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if page.Page != 1 || page.PageSize != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d", page.Page, page.PageSize)
	}
}

func TestRecommendation_ColdStartTriggersRefresh(t *testing.T) {
	s := scoreableStartup("Payline")
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}
	matches := newFakeMatchRepo() // no rows, zero newest
	refresher := &fakeRefresher{}

	uc := recUsecase(profiles, matches, refresher)

	if _, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("expected 1 refresh call, got %d", refresher.calls)
	}
}

func TestRecommendation_FreshRowsSkipRefresh(t *testing.T) {
	s := scoreableStartup("Payline")
	s.UpdatedAt = time.Now().Add(-time.Hour)
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}
	matches := newFakeMatchRepo()
	matches.newest = time.Now().UTC()
	refresher := &fakeRefresher{}

	uc := recUsecase(profiles, matches, refresher)

	if _, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if refresher.calls != 0 {
		t.Fatalf("expected no refresh, got %d calls", refresher.calls)
	}
}

func TestRecommendation_EditedProfileTriggersRefresh(t *testing.T) {
	s := scoreableStartup("Payline")
	s.UpdatedAt = time.Now().UTC()
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}
	matches := newFakeMatchRepo()
	matches.newest = time.Now().Add(-time.Hour)
	refresher := &fakeRefresher{}

	uc := recUsecase(profiles, matches, refresher)

	if _, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("expected 1 refresh call, got %d", refresher.calls)
	}
}

func TestRecommendation_DegradesWhenRefreshFails(t *testing.T) {
	s := scoreableStartup("Payline")
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}

	now := time.Now().UTC()
	matches := newFakeMatchRepo() // zero newest forces a refresh attempt
	matches.ranked = []repository.RankedMatch{rankedRow(75, now)}
	refresher := &fakeRefresher{err: errors.New("scoring backend down")}

	uc := recUsecase(profiles, matches, refresher)

	page, err := uc.GetRecommendations(context.Background(), s.ID, profile.TypeStartup, RecommendationParams{})
	if err != nil {
		t.Fatalf("expected degraded read, got err: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].MatchPercentage != 75 {
		t.Fatalf("expected existing row served, got %+v", page.Items)
	}
}

func TestRecommendation_ProfileNotFound(t *testing.T) {
	uc := recUsecase(&fakeProfileRepo{}, newFakeMatchRepo(), &fakeRefresher{})
	_, err := uc.GetRecommendations(context.Background(), uuid.New(), profile.TypeInvestor, RecommendationParams{})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
