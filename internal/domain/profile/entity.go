package profile

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

// Type discriminates the two profile populations. A profile keeps exactly
// one type for the lifetime of its account.
type Type string

const (
	TypeStartup  Type = "startup"
	TypeInvestor Type = "investor"
)

func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeStartup:
		return TypeStartup, true
	case TypeInvestor:
		return TypeInvestor, true
	}
	return "", false
}

func (t Type) Opposite() Type {
	if t == TypeStartup {
		return TypeInvestor
	}
	return TypeStartup
}

// Stage is the development stage ladder. Ordinal distance between stages
// drives the decayed stage-fit subscore.
type Stage int

// StageUnknown is the zero value so a Stage that was never set cannot be
// mistaken for a real rung on the ladder.
const (
	StageUnknown Stage = iota
	StageIdea
	StageMVP
	StageEarlyTraction
	StageGrowth
	StageExpansion
)

var stageNames = map[Stage]string{
	StageIdea:          "idea",
	StageMVP:           "mvp",
	StageEarlyTraction: "early_traction",
	StageGrowth:        "growth",
	StageExpansion:     "expansion",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return ""
}

func ParseStage(s string) (Stage, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for st, n := range stageNames {
		if n == s {
			return st, true
		}
	}
	return StageUnknown, false
}

type Startup struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Name            string
	Description     string
	Industries      []string
	Stage           Stage
	City            string
	BusinessModels  []string
	FundingAskCents int64
	Currency        string
	TeamMembers     []TeamMember
	KeyMetrics      []KeyMetric
	Disabled        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Investor struct {
	ID                      uuid.UUID
	AccountID               uuid.UUID
	Name                    string
	Description             string
	PreferredIndustries     []string
	ExcludedIndustries      []string
	PreferredStages         []Stage
	GeographicFocus         []string
	PreferredBusinessModels []string
	TypicalCheckSizeCents   int64
	Currency                string
	NotableExits            []NotableExit
	Disabled                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// TeamMember, KeyMetric and NotableExit live in jsonb columns. Entries that
// fail Valid() are dropped at the repository boundary instead of being
// trusted downstream.
type TeamMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (m TeamMember) Valid() bool {
	return strings.TrimSpace(m.Name) != ""
}

type KeyMetric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (m KeyMetric) Valid() bool {
	return strings.TrimSpace(m.Name) != "" && strings.TrimSpace(m.Value) != ""
}

type NotableExit struct {
	Company string `json:"company"`
	Year    int    `json:"year"`
}

func (e NotableExit) Valid() bool {
	return strings.TrimSpace(e.Company) != ""
}
