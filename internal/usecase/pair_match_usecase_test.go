package usecase

import (
	"context"
	"errors"
	"testing"

	"venture-match/internal/domain/matching"
	"venture-match/internal/domain/profile"

	"github.com/google/uuid"
)

func TestPairMatch_Breakdown(t *testing.T) {
	s := scoreableStartup("Payline")
	inv := scoreableInvestor("Harbor")
	profiles := &fakeProfileRepo{
		startups:  []profile.Startup{s},
		investors: []profile.Investor{inv},
	}
	uc := NewPairMatchUsecase(profiles)

	res, err := uc.CalculateMatch(context.Background(), s.ID, inv.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Percentage != 100 {
		t.Fatalf("expected 100, got %d", res.Percentage)
	}
	if len(res.Breakdown) != 5 {
		t.Fatalf("expected 5 factors, got %d", len(res.Breakdown))
	}
	var weightSum float64
	for _, f := range res.Breakdown {
		weightSum += f.Weight
	}
	if weightSum < 0.999 || weightSum > 1.001 {
		t.Fatalf("weights should sum to 1, got %v", weightSum)
	}
}

func TestPairMatch_VetoShowsInBreakdown(t *testing.T) {
	s := scoreableStartup("ChainWorks")
	s.Industries = []string{"Crypto"}
	inv := scoreableInvestor("Harbor")
	inv.ExcludedIndustries = []string{"crypto"}
	profiles := &fakeProfileRepo{
		startups:  []profile.Startup{s},
		investors: []profile.Investor{inv},
	}
	uc := NewPairMatchUsecase(profiles)

	res, err := uc.CalculateMatch(context.Background(), s.ID, inv.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, f := range res.Breakdown {
		if f.Factor == matching.FactorIndustry && f.Score != 0 {
			t.Fatalf("expected vetoed industry factor, got %v", f.Score)
		}
	}
}

func TestPairMatch_NotFound(t *testing.T) {
	uc := NewPairMatchUsecase(&fakeProfileRepo{})
	_, err := uc.CalculateMatch(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestPairMatch_IncompleteProfile(t *testing.T) {
	s := profile.Startup{ID: uuid.New(), Name: "Stealth"}
	inv := scoreableInvestor("Harbor")
	profiles := &fakeProfileRepo{
		startups:  []profile.Startup{s},
		investors: []profile.Investor{inv},
	}
	uc := NewPairMatchUsecase(profiles)

	_, err := uc.CalculateMatch(context.Background(), s.ID, inv.ID)
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}
