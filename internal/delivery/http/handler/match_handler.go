package handler

import (
	"errors"

	"venture-match/internal/delivery/http/dto"
	"venture-match/internal/delivery/http/middleware"
	"venture-match/internal/domain/profile"
	"venture-match/internal/pkg/response"
	"venture-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	pair    usecase.PairMatchUsecase
	refresh usecase.MatchRefreshUsecase
}

func NewMatchHandler(pair usecase.PairMatchUsecase, refresh usecase.MatchRefreshUsecase) *MatchHandler {
	return &MatchHandler{pair: pair, refresh: refresh}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/matches/:startup_id/:investor_id", h.GetPairMatch)
	r.Post("/startups/:id/matches/refresh", h.RefreshForStartup)
	r.Post("/investors/:id/matches/refresh", h.RefreshForInvestor)
}

func (h *MatchHandler) GetPairMatch(c fiber.Ctx) error {
	startupID, err := uuid.Parse(c.Params("startup_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	investorID, err := uuid.Parse(c.Params("investor_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	result, err := h.pair.CalculateMatch(c.Context(), startupID, investorID)
	if err != nil {
		return mapMatchError(err)
	}

	breakdown := make([]dto.FactorScoreResponse, 0, len(result.Breakdown))
	for _, fs := range result.Breakdown {
		breakdown = append(breakdown, dto.FactorScoreResponse{
			Factor:   fs.Factor,
			Weight:   fs.Weight,
			Score:    fs.Score,
			Weighted: fs.Weighted,
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.MatchResultResponse{
		StartupID:       startupID,
		InvestorID:      investorID,
		MatchPercentage: result.Percentage,
		Breakdown:       breakdown,
	})
}

func (h *MatchHandler) RefreshForStartup(c fiber.Ctx) error {
	return h.refreshFor(c, profile.TypeStartup)
}

func (h *MatchHandler) RefreshForInvestor(c fiber.Ctx) error {
	return h.refreshFor(c, profile.TypeInvestor)
}

func (h *MatchHandler) refreshFor(c fiber.Ctx, t profile.Type) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.refresh.RefreshMatches(c.Context(), id, t)
	if err != nil {
		return mapMatchError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RefreshResultResponse{
		Scored:  res.Scored,
		Skipped: res.Skipped,
		Pages:   res.Pages,
		Partial: res.Partial,
	})
}

func mapMatchError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, usecase.ErrProfileIncomplete):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Profile incomplete", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrStoreUnavailable):
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
