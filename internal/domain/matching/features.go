package matching

import (
	"errors"
	"sort"
	"strings"
	"time"

	"venture-match/internal/domain/profile"

	"github.com/google/uuid"
)

// ErrIncompleteProfile means the profile carries none of the attributes the
// scorer needs. Callers skip the pair instead of failing the batch.
var ErrIncompleteProfile = errors.New("profile incomplete for scoring")

// BandUnknown marks a missing check-size dimension.
const BandUnknown = -1

// checkSizeBandUppers are exclusive upper bounds in USD cents. Raw amounts
// are bucketed into ordinal bands so currency magnitude does not skew the
// check-size subscore.
var checkSizeBandUppers = []int64{
	50_000_00,    // band 0: < $50k
	250_000_00,   // band 1: $50k - $250k
	1_000_000_00, // band 2: $250k - $1M
	5_000_000_00, // band 3: $1M - $5M
}

func CheckSizeBand(cents int64) int {
	if cents <= 0 {
		return BandUnknown
	}
	for i, upper := range checkSizeBandUppers {
		if cents < upper {
			return i
		}
	}
	return len(checkSizeBandUppers)
}

// FeatureVector is the normalized, comparable projection of a profile. For
// startups Industries/Stages/Models describe the company itself; for
// investors they describe preferences, with ExcludedIndustries acting as a
// hard veto during scoring. Empty slices mean "dimension absent".
type FeatureVector struct {
	ProfileID          uuid.UUID
	Kind               profile.Type
	Industries         []string
	ExcludedIndustries []string
	Stages             []profile.Stage
	Regions            []string
	Models             []string
	CheckBand          int
	UpdatedAt          time.Time
}

func ExtractStartup(s profile.Startup) (FeatureVector, error) {
	fv := FeatureVector{
		ProfileID:  s.ID,
		Kind:       profile.TypeStartup,
		Industries: normalizeTags(s.Industries),
		Regions:    normalizeTags([]string{s.City}),
		Models:     normalizeTags(s.BusinessModels),
		CheckBand:  CheckSizeBand(s.FundingAskCents),
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Stage != profile.StageUnknown {
		fv.Stages = []profile.Stage{s.Stage}
	}
	if fv.incomplete() {
		return FeatureVector{}, ErrIncompleteProfile
	}
	return fv, nil
}

func ExtractInvestor(inv profile.Investor) (FeatureVector, error) {
	fv := FeatureVector{
		ProfileID:          inv.ID,
		Kind:               profile.TypeInvestor,
		Industries:         normalizeTags(inv.PreferredIndustries),
		ExcludedIndustries: normalizeTags(inv.ExcludedIndustries),
		Stages:             dedupeStages(inv.PreferredStages),
		Regions:            normalizeTags(inv.GeographicFocus),
		Models:             normalizeTags(inv.PreferredBusinessModels),
		CheckBand:          CheckSizeBand(inv.TypicalCheckSizeCents),
		UpdatedAt:          inv.UpdatedAt,
	}
	if fv.incomplete() {
		return FeatureVector{}, ErrIncompleteProfile
	}
	return fv, nil
}

// incomplete reports whether every scoring dimension is absent. Missing a
// subset of dimensions stays scoreable (those factors turn neutral); a
// profile with nothing to score on cannot be matched yet.
func (fv FeatureVector) incomplete() bool {
	return len(fv.Industries) == 0 && len(fv.Stages) == 0 && fv.CheckBand == BandUnknown
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func dedupeStages(stages []profile.Stage) []profile.Stage {
	out := make([]profile.Stage, 0, len(stages))
	seen := make(map[profile.Stage]struct{}, len(stages))
	for _, s := range stages {
		if s == profile.StageUnknown {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
