package matching

import (
	"fmt"
	"math"

	"venture-match/internal/domain/profile"
)

const (
	FactorIndustry      = "industry_overlap"
	FactorStage         = "stage_fit"
	FactorGeography     = "geography_fit"
	FactorBusinessModel = "business_model_fit"
	FactorCheckSize     = "check_size_fit"
)

// Factor weights are tuning knobs, not a contract. They must sum to 1.0;
// ValidateWeights runs once at process start and the process refuses to
// serve with a bad configuration.
const (
	weightIndustry      = 0.35
	weightStage         = 0.25
	weightGeography     = 0.15
	weightBusinessModel = 0.15
	weightCheckSize     = 0.10
)

const stageDecayPerStep = 0.25

func ValidateWeights() error {
	sum := weightIndustry + weightStage + weightGeography + weightBusinessModel + weightCheckSize
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights sum to %v, want 1.0", sum)
	}
	return nil
}

type FactorScore struct {
	Factor   string
	Weight   float64
	Score    float64 // normalized 0..1 before weighting
	Weighted float64
}

type Result struct {
	Percentage int
	Breakdown  []FactorScore
}

// Score computes the compatibility between one startup and one investor
// feature vector. Pure and deterministic: identical inputs always produce
// identical output. A dimension absent on either side scores neutral (1.0);
// an excluded industry on the startup vetoes the industry factor to 0.
func Score(startup, investor FeatureVector) Result {
	factors := []FactorScore{
		{Factor: FactorIndustry, Weight: weightIndustry, Score: industryScore(startup, investor)},
		{Factor: FactorStage, Weight: weightStage, Score: stageScore(startup, investor)},
		{Factor: FactorGeography, Weight: weightGeography, Score: geographyScore(startup, investor)},
		{Factor: FactorBusinessModel, Weight: weightBusinessModel, Score: modelScore(startup, investor)},
		{Factor: FactorCheckSize, Weight: weightCheckSize, Score: checkSizeScore(startup, investor)},
	}

	var total, denom float64
	for i := range factors {
		factors[i].Weighted = factors[i].Weight * factors[i].Score
		total += factors[i].Weighted
		denom += factors[i].Weight
	}

	pct := int(math.Round(100 * total / denom))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Result{Percentage: pct, Breakdown: factors}
}

func industryScore(s, inv FeatureVector) float64 {
	if intersects(s.Industries, inv.ExcludedIndustries) {
		return 0
	}
	if len(inv.Industries) == 0 || len(s.Industries) == 0 {
		return 1
	}
	return jaccard(s.Industries, inv.Industries)
}

func stageScore(s, inv FeatureVector) float64 {
	if len(s.Stages) == 0 || len(inv.Stages) == 0 {
		return 1
	}
	stage := s.Stages[0]
	best := 0.0
	for _, pref := range inv.Stages {
		d := stageDistance(stage, pref)
		score := 1 - stageDecayPerStep*float64(d)
		if score < 0 {
			score = 0
		}
		if score > best {
			best = score
		}
	}
	return best
}

func geographyScore(s, inv FeatureVector) float64 {
	if len(inv.Regions) == 0 || len(s.Regions) == 0 {
		return 1
	}
	if intersects(s.Regions, inv.Regions) {
		return 1
	}
	return 0
}

func modelScore(s, inv FeatureVector) float64 {
	if len(inv.Models) == 0 || len(s.Models) == 0 {
		return 1
	}
	return jaccard(s.Models, inv.Models)
}

func checkSizeScore(s, inv FeatureVector) float64 {
	if s.CheckBand == BandUnknown || inv.CheckBand == BandUnknown {
		return 1
	}
	d := s.CheckBand - inv.CheckBand
	if d < 0 {
		d = -d
	}
	if d <= 1 {
		return 1
	}
	score := 1 - stageDecayPerStep*float64(d-1)
	if score < 0 {
		return 0
	}
	return score
}

func stageDistance(a, b profile.Stage) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	inter := 0
	for _, v := range b {
		if _, ok := set[v]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
