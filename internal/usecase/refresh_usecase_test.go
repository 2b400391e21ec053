package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"venture-match/internal/domain/match"
	"venture-match/internal/domain/profile"
	"venture-match/internal/repository"

	"github.com/google/uuid"
)

type fakeProfileRepo struct {
	startups  []profile.Startup
	investors []profile.Investor
	err       error
}

func (f *fakeProfileRepo) CreateStartup(context.Context, profile.Startup) error { return f.err }
func (f *fakeProfileRepo) UpdateStartup(context.Context, profile.Startup) error { return f.err }
func (f *fakeProfileRepo) GetStartup(_ context.Context, id uuid.UUID) (profile.Startup, error) {
	if f.err != nil {
		return profile.Startup{}, f.err
	}
	for _, s := range f.startups {
		if s.ID == id {
			return s, nil
		}
	}
	return profile.Startup{}, profile.ErrNotFound
}

func (f *fakeProfileRepo) ListStartups(_ context.Context, cursor uuid.UUID, limit int) ([]profile.Startup, uuid.UUID, error) {
	if f.err != nil {
		return nil, uuid.Nil, f.err
	}
	sorted := make([]profile.Startup, len(f.startups))
	copy(sorted, f.startups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID.String() < sorted[j].ID.String() })

	page := make([]profile.Startup, 0, limit)
	for _, s := range sorted {
		if cursor != uuid.Nil && s.ID.String() <= cursor.String() {
			continue
		}
		page = append(page, s)
		if len(page) == limit {
			return page, s.ID, nil
		}
	}
	return page, uuid.Nil, nil
}

func (f *fakeProfileRepo) CreateInvestor(context.Context, profile.Investor) error { return f.err }
func (f *fakeProfileRepo) UpdateInvestor(context.Context, profile.Investor) error { return f.err }
func (f *fakeProfileRepo) GetInvestor(_ context.Context, id uuid.UUID) (profile.Investor, error) {
	if f.err != nil {
		return profile.Investor{}, f.err
	}
	for _, inv := range f.investors {
		if inv.ID == id {
			return inv, nil
		}
	}
	return profile.Investor{}, profile.ErrNotFound
}

func (f *fakeProfileRepo) ListInvestors(_ context.Context, cursor uuid.UUID, limit int) ([]profile.Investor, uuid.UUID, error) {
	if f.err != nil {
		return nil, uuid.Nil, f.err
	}
	sorted := make([]profile.Investor, len(f.investors))
	copy(sorted, f.investors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID.String() < sorted[j].ID.String() })

	page := make([]profile.Investor, 0, limit)
	for _, inv := range sorted {
		if cursor != uuid.Nil && inv.ID.String() <= cursor.String() {
			continue
		}
		page = append(page, inv)
		if len(page) == limit {
			return page, inv.ID, nil
		}
	}
	return page, uuid.Nil, nil
}

type pairKey struct {
	startup  uuid.UUID
	investor uuid.UUID
}

type fakeMatchRepo struct {
	mu        sync.Mutex
	rows      map[pairKey]repository.MatchUpsert
	ranked    []repository.RankedMatch
	upsertErr error
	listErr   error
	newest    time.Time
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{rows: map[pairKey]repository.MatchUpsert{}}
}

func (f *fakeMatchRepo) Upsert(_ context.Context, m repository.MatchUpsert) error {
	return f.UpsertBatch(context.Background(), []repository.MatchUpsert{m})
}

func (f *fakeMatchRepo) UpsertBatch(_ context.Context, ms []repository.MatchUpsert) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range ms {
		f.rows[pairKey{m.StartupID, m.InvestorID}] = m
	}
	return nil
}

func (f *fakeMatchRepo) GetPair(_ context.Context, startupID, investorID uuid.UUID) (match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[pairKey{startupID, investorID}]
	if !ok {
		return match.Match{}, match.ErrNotFound
	}
	return match.Match{
		StartupID:  m.StartupID,
		InvestorID: m.InvestorID,
		Percentage: m.Percentage,
		ScoredAt:   m.ScoredAt,
	}, nil
}

func (f *fakeMatchRepo) ListRanked(_ context.Context, _ uuid.UUID, _ profile.Type, limit, offset int) ([]repository.RankedMatch, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	sorted := make([]repository.RankedMatch, len(f.ranked))
	copy(sorted, f.ranked)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Percentage != sorted[j].Percentage {
			return sorted[i].Percentage > sorted[j].Percentage
		}
		if !sorted[i].CounterpartUpdatedAt.Equal(sorted[j].CounterpartUpdatedAt) {
			return sorted[i].CounterpartUpdatedAt.After(sorted[j].CounterpartUpdatedAt)
		}
		return sorted[i].CounterpartID.String() < sorted[j].CounterpartID.String()
	})

	if offset >= len(sorted) {
		return nil, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (f *fakeMatchRepo) CountForProfile(context.Context, uuid.UUID, profile.Type) (int, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	if len(f.ranked) > 0 {
		return len(f.ranked), nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

func (f *fakeMatchRepo) NewestScoredAt(context.Context, uuid.UUID, profile.Type) (time.Time, error) {
	return f.newest, nil
}

func scoreableStartup(name string) profile.Startup {
	return profile.Startup{
		ID:              uuid.New(),
		AccountID:       uuid.New(),
		Name:            name,
		Industries:      []string{"FinTech"},
		Stage:           profile.StageMVP,
		City:            "Manila",
		BusinessModels:  []string{"B2B"},
		FundingAskCents: 100_000_00,
		UpdatedAt:       time.Now().UTC(),
	}
}

func scoreableInvestor(name string) profile.Investor {
	return profile.Investor{
		ID:                    uuid.New(),
		AccountID:             uuid.New(),
		Name:                  name,
		PreferredIndustries:   []string{"FinTech"},
		PreferredStages:       []profile.Stage{profile.StageMVP},
		GeographicFocus:       []string{"Manila"},
		TypicalCheckSizeCents: 100_000_00,
		UpdatedAt:             time.Now().UTC(),
	}
}

func TestMatchRefresh_ScoresAllInvestors(t *testing.T) {
	s := scoreableStartup("Payline")
	profiles := &fakeProfileRepo{
		startups:  []profile.Startup{s},
		investors: []profile.Investor{scoreableInvestor("A"), scoreableInvestor("B"), scoreableInvestor("C")},
	}
	matches := newFakeMatchRepo()
	uc := NewMatchRefreshUsecase(profiles, matches, nil, nil, 200, 2)

	res, err := uc.RefreshMatches(context.Background(), s.ID, profile.TypeStartup)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Scored != 3 || res.Skipped != 0 {
		t.Fatalf("expected 3 scored, got %+v", res)
	}
	if len(matches.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(matches.rows))
	}
}

func TestMatchRefresh_Idempotent(t *testing.T) {
	s := scoreableStartup("Payline")
	profiles := &fakeProfileRepo{
		startups:  []profile.Startup{s},
		investors: []profile.Investor{scoreableInvestor("A"), scoreableInvestor("B")},
	}
	matches := newFakeMatchRepo()
	uc := NewMatchRefreshUsecase(profiles, matches, nil, nil, 200, 2)

	if _, err := uc.RefreshMatches(context.Background(), s.ID, profile.TypeStartup); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first := make(map[pairKey]int, len(matches.rows))
	for k, v := range matches.rows {
		first[k] = v.Percentage
	}

	if _, err := uc.RefreshMatches(context.Background(), s.ID, profile.TypeStartup); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if len(matches.rows) != len(first) {
		t.Fatalf("row count changed: %d vs %d", len(matches.rows), len(first))
	}
	for k, v := range matches.rows {
		if first[k] != v.Percentage {
			t.Fatalf("percentage changed for %v: %d vs %d", k, first[k], v.Percentage)
		}
	}
}

func TestMatchRefresh_SkipsIncompleteCounterparts(t *testing.T) {
	s := scoreableStartup("Payline")
	blank := profile.Investor{ID: uuid.New(), Name: "Blank Capital"}
	profiles := &fakeProfileRepo{
		startups:  []profile.Startup{s},
		investors: []profile.Investor{scoreableInvestor("A"), blank},
	}
	matches := newFakeMatchRepo()
	uc := NewMatchRefreshUsecase(profiles, matches, nil, nil, 200, 2)

	res, err := uc.RefreshMatches(context.Background(), s.ID, profile.TypeStartup)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Scored != 1 || res.Skipped != 1 {
		t.Fatalf("expected 1 scored 1 skipped, got %+v", res)
	}
}

func TestMatchRefresh_IncompleteOwner(t *testing.T) {
	s := profile.Startup{ID: uuid.New(), Name: "Stealth"}
	profiles := &fakeProfileRepo{startups: []profile.Startup{s}}
	uc := NewMatchRefreshUsecase(profiles, newFakeMatchRepo(), nil, nil, 200, 2)

	_, err := uc.RefreshMatches(context.Background(), s.ID, profile.TypeStartup)
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}

func TestMatchRefresh_ProfileNotFound(t *testing.T) {
	uc := NewMatchRefreshUsecase(&fakeProfileRepo{}, newFakeMatchRepo(), nil, nil, 200, 2)
	_, err := uc.RefreshMatches(context.Background(), uuid.New(), profile.TypeInvestor)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestMatchRefresh_PartialOnUpsertFailure(t *testing.T) {
	s := scoreableStartup("Payline")
	profiles := &fakeProfileRepo{
		startups:  []profile.Startup{s},
		investors: []profile.Investor{scoreableInvestor("A")},
	}
	matches := newFakeMatchRepo()
	matches.upsertErr = errors.New("connection reset")
	uc := NewMatchRefreshUsecase(profiles, matches, nil, nil, 200, 2)

	res, err := uc.RefreshMatches(context.Background(), s.ID, profile.TypeStartup)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !res.Partial {
		t.Fatalf("expected partial result")
	}
}

func TestMatchRefresh_PagesThroughCursor(t *testing.T) {
	inv := scoreableInvestor("Harbor")
	profiles := &fakeProfileRepo{investors: []profile.Investor{inv}}
	for i := 0; i < 5; i++ {
		profiles.startups = append(profiles.startups, scoreableStartup("S"))
	}
	matches := newFakeMatchRepo()
	uc := NewMatchRefreshUsecase(profiles, matches, nil, nil, 2, 2)

	res, err := uc.RefreshMatches(context.Background(), inv.ID, profile.TypeInvestor)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Scored != 5 {
		t.Fatalf("expected 5 scored, got %+v", res)
	}
	if res.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", res.Pages)
	}
}
