package dto

import (
	"time"

	"github.com/google/uuid"
)

type FactorScoreResponse struct {
	Factor   string  `json:"factor"`
	Weight   float64 `json:"weight"`
	Score    float64 `json:"score"`
	Weighted float64 `json:"weighted"`
}

type MatchResultResponse struct {
	StartupID       uuid.UUID             `json:"startup_id"`
	InvestorID      uuid.UUID             `json:"investor_id"`
	MatchPercentage int                   `json:"match_percentage"`
	Breakdown       []FactorScoreResponse `json:"breakdown"`
}

type RefreshResultResponse struct {
	Scored  int  `json:"scored"`
	Skipped int  `json:"skipped"`
	Pages   int  `json:"pages"`
	Partial bool `json:"partial"`
}

type RecommendationItemResponse struct {
	ProfileID       uuid.UUID `json:"profile_id"`
	Name            string    `json:"name"`
	MatchPercentage int       `json:"match_percentage"`
	Industries      []string  `json:"industries"`
	Regions         []string  `json:"regions"`
	Stage           string    `json:"stage,omitempty"`
	ScoredAt        time.Time `json:"scored_at"`
}

type RecommendationPageResponse struct {
	Items      []RecommendationItemResponse `json:"items"`
	TotalCount int                          `json:"total_count"`
	Page       int                          `json:"page"`
	PageSize   int                          `json:"page_size"`
}
