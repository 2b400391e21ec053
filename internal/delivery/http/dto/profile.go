package dto

import (
	"time"

	"github.com/google/uuid"
)

type TeamMemberItem struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role"`
}

type KeyMetricItem struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

type NotableExitItem struct {
	Company string `json:"company" validate:"required"`
	Year    int    `json:"year" validate:"omitempty,gte=1900"`
}

type StartupRequest struct {
	Name            string           `json:"name" validate:"required,max=200"`
	Description     string           `json:"description" validate:"max=5000"`
	Industries      []string         `json:"industries" validate:"max=20,dive,max=100"`
	Stage           string           `json:"stage" validate:"omitempty,oneof=idea mvp early_traction growth expansion"`
	City            string           `json:"city" validate:"max=100"`
	BusinessModels  []string         `json:"business_models" validate:"max=20,dive,max=100"`
	FundingAskCents int64            `json:"funding_ask_cents" validate:"gte=0"`
	Currency        string           `json:"currency" validate:"omitempty,len=3"`
	TeamMembers     []TeamMemberItem `json:"team_members" validate:"max=50,dive"`
	KeyMetrics      []KeyMetricItem  `json:"key_metrics" validate:"max=50,dive"`
}

type InvestorRequest struct {
	Name                    string            `json:"name" validate:"required,max=200"`
	Description             string            `json:"description" validate:"max=5000"`
	PreferredIndustries     []string          `json:"preferred_industries" validate:"max=20,dive,max=100"`
	ExcludedIndustries      []string          `json:"excluded_industries" validate:"max=20,dive,max=100"`
	PreferredStages         []string          `json:"preferred_stages" validate:"max=5,dive,oneof=idea mvp early_traction growth expansion"`
	GeographicFocus         []string          `json:"geographic_focus" validate:"max=20,dive,max=100"`
	PreferredBusinessModels []string          `json:"preferred_business_models" validate:"max=20,dive,max=100"`
	TypicalCheckSizeCents   int64             `json:"typical_check_size_cents" validate:"gte=0"`
	Currency                string            `json:"currency" validate:"omitempty,len=3"`
	NotableExits            []NotableExitItem `json:"notable_exits" validate:"max=50,dive"`
}

type StartupResponse struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Industries      []string         `json:"industries"`
	Stage           string           `json:"stage"`
	City            string           `json:"city"`
	BusinessModels  []string         `json:"business_models"`
	FundingAskCents int64            `json:"funding_ask_cents"`
	Currency        string           `json:"currency"`
	TeamMembers     []TeamMemberItem `json:"team_members"`
	KeyMetrics      []KeyMetricItem  `json:"key_metrics"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type InvestorResponse struct {
	ID                      uuid.UUID         `json:"id"`
	Name                    string            `json:"name"`
	Description             string            `json:"description"`
	PreferredIndustries     []string          `json:"preferred_industries"`
	ExcludedIndustries      []string          `json:"excluded_industries"`
	PreferredStages         []string          `json:"preferred_stages"`
	GeographicFocus         []string          `json:"geographic_focus"`
	PreferredBusinessModels []string          `json:"preferred_business_models"`
	TypicalCheckSizeCents   int64             `json:"typical_check_size_cents"`
	Currency                string            `json:"currency"`
	NotableExits            []NotableExitItem `json:"notable_exits"`
	UpdatedAt               time.Time         `json:"updated_at"`
}
