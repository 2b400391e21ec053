package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"venture-match/internal/domain/profile"
	"venture-match/internal/repository"

	"github.com/google/uuid"
)

type StartupInput struct {
	Name            string
	Description     string
	Industries      []string
	Stage           string
	City            string
	BusinessModels  []string
	FundingAskCents int64
	Currency        string
	TeamMembers     []profile.TeamMember
	KeyMetrics      []profile.KeyMetric
}

type InvestorInput struct {
	Name                    string
	Description             string
	PreferredIndustries     []string
	ExcludedIndustries      []string
	PreferredStages         []string
	GeographicFocus         []string
	PreferredBusinessModels []string
	TypicalCheckSizeCents   int64
	Currency                string
	NotableExits            []profile.NotableExit
}

type ProfileUsecase interface {
	CreateStartup(ctx context.Context, accountID uuid.UUID, in StartupInput) (profile.Startup, error)
	GetStartup(ctx context.Context, id uuid.UUID) (profile.Startup, error)
	UpdateStartup(ctx context.Context, accountID, id uuid.UUID, in StartupInput) (profile.Startup, error)

	CreateInvestor(ctx context.Context, accountID uuid.UUID, in InvestorInput) (profile.Investor, error)
	GetInvestor(ctx context.Context, id uuid.UUID) (profile.Investor, error)
	UpdateInvestor(ctx context.Context, accountID, id uuid.UUID, in InvestorInput) (profile.Investor, error)
}

type Profile struct {
	profiles  repository.ProfileRepository
	cache     RecommendationCache
	freshness *FreshnessService
}

func NewProfileUsecase(profiles repository.ProfileRepository, cache RecommendationCache, freshness *FreshnessService) *Profile {
	return &Profile{profiles: profiles, cache: cache, freshness: freshness}
}

func (u *Profile) CreateStartup(ctx context.Context, accountID uuid.UUID, in StartupInput) (profile.Startup, error) {
	if accountID == uuid.Nil {
		return profile.Startup{}, ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return profile.Startup{}, ErrInvalidInput
	}

	stage := profile.StageUnknown
	if in.Stage != "" {
		st, ok := profile.ParseStage(in.Stage)
		if !ok {
			return profile.Startup{}, ErrInvalidInput
		}
		stage = st
	}

	s := profile.Startup{
		ID:              uuid.New(),
		AccountID:       accountID,
		Name:            name,
		Description:     in.Description,
		Industries:      in.Industries,
		Stage:           stage,
		City:            strings.TrimSpace(in.City),
		BusinessModels:  in.BusinessModels,
		FundingAskCents: in.FundingAskCents,
		Currency:        defaultCurrency(in.Currency),
		TeamMembers:     in.TeamMembers,
		KeyMetrics:      in.KeyMetrics,
	}

	if err := u.profiles.CreateStartup(ctx, s); err != nil {
		return profile.Startup{}, ErrInternal
	}
	return u.profiles.GetStartup(ctx, s.ID)
}

func (u *Profile) GetStartup(ctx context.Context, id uuid.UUID) (profile.Startup, error) {
	s, err := u.profiles.GetStartup(ctx, id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Startup{}, ErrProfileNotFound
		}
		return profile.Startup{}, ErrInternal
	}
	return s, nil
}

func (u *Profile) UpdateStartup(ctx context.Context, accountID, id uuid.UUID, in StartupInput) (profile.Startup, error) {
	s, err := u.GetStartup(ctx, id)
	if err != nil {
		return profile.Startup{}, err
	}
	if s.AccountID != accountID {
		return profile.Startup{}, ErrUnauthorized
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		s.Name = name
	}
	s.Description = in.Description
	s.Industries = in.Industries
	if in.Stage != "" {
		st, ok := profile.ParseStage(in.Stage)
		if !ok {
			return profile.Startup{}, ErrInvalidInput
		}
		s.Stage = st
	}
	s.City = strings.TrimSpace(in.City)
	s.BusinessModels = in.BusinessModels
	s.FundingAskCents = in.FundingAskCents
	s.Currency = defaultCurrency(in.Currency)
	s.TeamMembers = in.TeamMembers
	s.KeyMetrics = in.KeyMetrics

	if err := u.profiles.UpdateStartup(ctx, s); err != nil {
		return profile.Startup{}, ErrInternal
	}

	updated, err := u.profiles.GetStartup(ctx, id)
	if err != nil {
		return profile.Startup{}, ErrInternal
	}

	u.afterEdit(ctx, id, profile.TypeStartup, updated.UpdatedAt)
	return updated, nil
}

func (u *Profile) CreateInvestor(ctx context.Context, accountID uuid.UUID, in InvestorInput) (profile.Investor, error) {
	if accountID == uuid.Nil {
		return profile.Investor{}, ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return profile.Investor{}, ErrInvalidInput
	}

	stages, err := parseStages(in.PreferredStages)
	if err != nil {
		return profile.Investor{}, err
	}

	inv := profile.Investor{
		ID:                      uuid.New(),
		AccountID:               accountID,
		Name:                    name,
		Description:             in.Description,
		PreferredIndustries:     in.PreferredIndustries,
		ExcludedIndustries:      in.ExcludedIndustries,
		PreferredStages:         stages,
		GeographicFocus:         in.GeographicFocus,
		PreferredBusinessModels: in.PreferredBusinessModels,
		TypicalCheckSizeCents:   in.TypicalCheckSizeCents,
		Currency:                defaultCurrency(in.Currency),
		NotableExits:            in.NotableExits,
	}

	if err := u.profiles.CreateInvestor(ctx, inv); err != nil {
		return profile.Investor{}, ErrInternal
	}
	return u.profiles.GetInvestor(ctx, inv.ID)
}

func (u *Profile) GetInvestor(ctx context.Context, id uuid.UUID) (profile.Investor, error) {
	inv, err := u.profiles.GetInvestor(ctx, id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Investor{}, ErrProfileNotFound
		}
		return profile.Investor{}, ErrInternal
	}
	return inv, nil
}

func (u *Profile) UpdateInvestor(ctx context.Context, accountID, id uuid.UUID, in InvestorInput) (profile.Investor, error) {
	inv, err := u.GetInvestor(ctx, id)
	if err != nil {
		return profile.Investor{}, err
	}
	if inv.AccountID != accountID {
		return profile.Investor{}, ErrUnauthorized
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		inv.Name = name
	}
	inv.Description = in.Description
	inv.PreferredIndustries = in.PreferredIndustries
	inv.ExcludedIndustries = in.ExcludedIndustries
	stages, err := parseStages(in.PreferredStages)
	if err != nil {
		return profile.Investor{}, err
	}
	inv.PreferredStages = stages
	inv.GeographicFocus = in.GeographicFocus
	inv.PreferredBusinessModels = in.PreferredBusinessModels
	inv.TypicalCheckSizeCents = in.TypicalCheckSizeCents
	inv.Currency = defaultCurrency(in.Currency)
	inv.NotableExits = in.NotableExits

	if err := u.profiles.UpdateInvestor(ctx, inv); err != nil {
		return profile.Investor{}, ErrInternal
	}

	updated, err := u.profiles.GetInvestor(ctx, id)
	if err != nil {
		return profile.Investor{}, ErrInternal
	}

	u.afterEdit(ctx, id, profile.TypeInvestor, updated.UpdatedAt)
	return updated, nil
}

// afterEdit drops cached recommendation pages for the edited profile and
// kicks off a background re-score.
func (u *Profile) afterEdit(ctx context.Context, id uuid.UUID, t profile.Type, editedAt time.Time) {
	if u.cache != nil {
		_ = u.cache.DeleteByPattern(ctx, RecommendationCachePattern(t, id))
	}
	if u.freshness != nil {
		u.freshness.EnsureFresh(ctx, id, t, editedAt)
	}
}

func parseStages(raw []string) ([]profile.Stage, error) {
	out := make([]profile.Stage, 0, len(raw))
	for _, s := range raw {
		st, ok := profile.ParseStage(s)
		if !ok {
			return nil, ErrInvalidInput
		}
		out = append(out, st)
	}
	return out, nil
}

func defaultCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "USD"
	}
	return c
}
