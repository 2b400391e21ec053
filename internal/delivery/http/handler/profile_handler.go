package handler

import (
	"errors"

	"venture-match/internal/delivery/http/dto"
	"venture-match/internal/delivery/http/middleware"
	"venture-match/internal/domain/profile"
	"venture-match/internal/pkg/response"
	"venture-match/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	uc       usecase.ProfileUsecase
	validate *validator.Validate
}

func NewProfileHandler(uc usecase.ProfileUsecase, validate *validator.Validate) *ProfileHandler {
	return &ProfileHandler{uc: uc, validate: validate}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	startups := r.Group("/startups")
	startups.Post("/", h.CreateStartup)
	startups.Get("/:id", h.GetStartup)
	startups.Put("/:id", h.UpdateStartup)

	investors := r.Group("/investors")
	investors.Post("/", h.CreateInvestor)
	investors.Get("/:id", h.GetInvestor)
	investors.Put("/:id", h.UpdateInvestor)
}

func (h *ProfileHandler) CreateStartup(c fiber.Ctx) error {
	accountID, ok := c.Locals(middleware.CtxAccountIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	in, err := h.bindStartup(c)
	if err != nil {
		return err
	}

	s, err := h.uc.CreateStartup(c.Context(), accountID, in)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, startupToResponse(s))
}

func (h *ProfileHandler) GetStartup(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	s, err := h.uc.GetStartup(c.Context(), id)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, startupToResponse(s))
}

func (h *ProfileHandler) UpdateStartup(c fiber.Ctx) error {
	accountID, ok := c.Locals(middleware.CtxAccountIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	in, err := h.bindStartup(c)
	if err != nil {
		return err
	}

	s, err := h.uc.UpdateStartup(c.Context(), accountID, id, in)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, startupToResponse(s))
}

func (h *ProfileHandler) CreateInvestor(c fiber.Ctx) error {
	accountID, ok := c.Locals(middleware.CtxAccountIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	in, err := h.bindInvestor(c)
	if err != nil {
		return err
	}

	inv, err := h.uc.CreateInvestor(c.Context(), accountID, in)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, investorToResponse(inv))
}

func (h *ProfileHandler) GetInvestor(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	inv, err := h.uc.GetInvestor(c.Context(), id)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, investorToResponse(inv))
}

func (h *ProfileHandler) UpdateInvestor(c fiber.Ctx) error {
	accountID, ok := c.Locals(middleware.CtxAccountIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	in, err := h.bindInvestor(c)
	if err != nil {
		return err
	}

	inv, err := h.uc.UpdateInvestor(c.Context(), accountID, id, in)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, investorToResponse(inv))
}

func (h *ProfileHandler) bindStartup(c fiber.Ctx) (usecase.StartupInput, error) {
	var req dto.StartupRequest
	if err := c.Bind().Body(&req); err != nil {
		return usecase.StartupInput{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return usecase.StartupInput{}, middleware.NewAppError(fiber.StatusUnprocessableEntity, "Validation failed", nil, err)
	}

	team := make([]profile.TeamMember, 0, len(req.TeamMembers))
	for _, m := range req.TeamMembers {
		team = append(team, profile.TeamMember{Name: m.Name, Role: m.Role})
	}
	metrics := make([]profile.KeyMetric, 0, len(req.KeyMetrics))
	for _, m := range req.KeyMetrics {
		metrics = append(metrics, profile.KeyMetric{Name: m.Name, Value: m.Value})
	}

	return usecase.StartupInput{
		Name:            req.Name,
		Description:     req.Description,
		Industries:      req.Industries,
		Stage:           req.Stage,
		City:            req.City,
		BusinessModels:  req.BusinessModels,
		FundingAskCents: req.FundingAskCents,
		Currency:        req.Currency,
		TeamMembers:     team,
		KeyMetrics:      metrics,
	}, nil
}

func (h *ProfileHandler) bindInvestor(c fiber.Ctx) (usecase.InvestorInput, error) {
	var req dto.InvestorRequest
	if err := c.Bind().Body(&req); err != nil {
		return usecase.InvestorInput{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return usecase.InvestorInput{}, middleware.NewAppError(fiber.StatusUnprocessableEntity, "Validation failed", nil, err)
	}

	exits := make([]profile.NotableExit, 0, len(req.NotableExits))
	for _, e := range req.NotableExits {
		exits = append(exits, profile.NotableExit{Company: e.Company, Year: e.Year})
	}

	return usecase.InvestorInput{
		Name:                    req.Name,
		Description:             req.Description,
		PreferredIndustries:     req.PreferredIndustries,
		ExcludedIndustries:      req.ExcludedIndustries,
		PreferredStages:         req.PreferredStages,
		GeographicFocus:         req.GeographicFocus,
		PreferredBusinessModels: req.PreferredBusinessModels,
		TypicalCheckSizeCents:   req.TypicalCheckSizeCents,
		Currency:                req.Currency,
		NotableExits:            exits,
	}, nil
}

func startupToResponse(s profile.Startup) dto.StartupResponse {
	team := make([]dto.TeamMemberItem, 0, len(s.TeamMembers))
	for _, m := range s.TeamMembers {
		team = append(team, dto.TeamMemberItem{Name: m.Name, Role: m.Role})
	}
	metrics := make([]dto.KeyMetricItem, 0, len(s.KeyMetrics))
	for _, m := range s.KeyMetrics {
		metrics = append(metrics, dto.KeyMetricItem{Name: m.Name, Value: m.Value})
	}

	return dto.StartupResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Industries:      s.Industries,
		Stage:           s.Stage.String(),
		City:            s.City,
		BusinessModels:  s.BusinessModels,
		FundingAskCents: s.FundingAskCents,
		Currency:        s.Currency,
		TeamMembers:     team,
		KeyMetrics:      metrics,
		UpdatedAt:       s.UpdatedAt,
	}
}

func investorToResponse(inv profile.Investor) dto.InvestorResponse {
	stages := make([]string, 0, len(inv.PreferredStages))
	for _, st := range inv.PreferredStages {
		stages = append(stages, st.String())
	}
	exits := make([]dto.NotableExitItem, 0, len(inv.NotableExits))
	for _, e := range inv.NotableExits {
		exits = append(exits, dto.NotableExitItem{Company: e.Company, Year: e.Year})
	}

	return dto.InvestorResponse{
		ID:                      inv.ID,
		Name:                    inv.Name,
		Description:             inv.Description,
		PreferredIndustries:     inv.PreferredIndustries,
		ExcludedIndustries:      inv.ExcludedIndustries,
		PreferredStages:         stages,
		GeographicFocus:         inv.GeographicFocus,
		PreferredBusinessModels: inv.PreferredBusinessModels,
		TypicalCheckSizeCents:   inv.TypicalCheckSizeCents,
		Currency:                inv.Currency,
		NotableExits:            exits,
		UpdatedAt:               inv.UpdatedAt,
	}
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
