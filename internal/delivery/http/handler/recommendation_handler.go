package handler

import (
	"errors"
	"strconv"

	"venture-match/internal/delivery/http/dto"
	"venture-match/internal/delivery/http/middleware"
	"venture-match/internal/domain/profile"
	"venture-match/internal/pkg/response"
	"venture-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RecommendationHandler struct {
	uc usecase.RecommendationUsecase
}

func NewRecommendationHandler(uc usecase.RecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{uc: uc}
}

func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/startups/:id/recommendations", h.GetForStartup)
	r.Get("/investors/:id/recommendations", h.GetForInvestor)
}

func (h *RecommendationHandler) GetForStartup(c fiber.Ctx) error {
	return h.get(c, profile.TypeStartup)
}

func (h *RecommendationHandler) GetForInvestor(c fiber.Ctx) error {
	return h.get(c, profile.TypeInvestor)
}

func (h *RecommendationHandler) get(c fiber.Ctx, t profile.Type) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	params, err := parsePagination(c)
	if err != nil {
		return err
	}

	page, err := h.uc.GetRecommendations(c.Context(), id, t, params)
	if err != nil {
		return mapRecommendationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, pageToResponse(page))
}

func parsePagination(c fiber.Ctx) (usecase.RecommendationParams, error) {
	var params usecase.RecommendationParams

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, middleware.NewAppError(fiber.StatusBadRequest, "Invalid page", nil, err)
		}
		params.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, middleware.NewAppError(fiber.StatusBadRequest, "Invalid page_size", nil, err)
		}
		params.PageSize = n
	}

	return params, nil
}

func pageToResponse(page usecase.RecommendationPage) dto.RecommendationPageResponse {
	items := make([]dto.RecommendationItemResponse, 0, len(page.Items))
	for _, it := range page.Items {
		items = append(items, dto.RecommendationItemResponse{
			ProfileID:       it.ProfileID,
			Name:            it.Name,
			MatchPercentage: it.MatchPercentage,
			Industries:      it.Industries,
			Regions:         it.Regions,
			Stage:           it.Stage,
			ScoredAt:        it.ScoredAt,
		})
	}

	return dto.RecommendationPageResponse{
		Items:      items,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}

func mapRecommendationError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidPagination):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pagination", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrStoreUnavailable):
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
