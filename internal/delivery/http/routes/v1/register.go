package v1

import (
	"log"

	"venture-match/internal/config"
	"venture-match/internal/database"
	"venture-match/internal/delivery/http/handler"
	"venture-match/internal/delivery/http/middleware"
	"venture-match/internal/infrastructure/cache"
	"venture-match/internal/pkg/jwt"
	"venture-match/internal/repository"
	"venture-match/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, cfg config.Config, db database.DB, redis *cache.Redis, logger *log.Logger) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	authMw := middleware.NewAuthMiddleware(jwtSvc)
	validate := validator.New()

	accountRepo := repository.NewPostgresAccountRepository(db)
	profileRepo := repository.NewPostgresProfileRepository(db)
	matchRepo := repository.NewPostgresMatchRepository(db)

	refreshUC := usecase.NewMatchRefreshUsecase(
		profileRepo, matchRepo, redis, logger,
		cfg.Match.BatchSize, cfg.Match.RefreshWorkers,
	)
	freshness := usecase.NewFreshnessService(
		matchRepo, refreshUC, redis, logger, cfg.Match.FreshnessWindow,
	)

	authUC := usecase.NewAuthUsecase(accountRepo, jwtSvc)
	profileUC := usecase.NewProfileUsecase(profileRepo, redis, freshness)
	pairUC := usecase.NewPairMatchUsecase(profileRepo)
	recUC := usecase.NewRecommendationUsecase(
		profileRepo, matchRepo, refreshUC, redis, logger,
		cfg.Match.FreshnessWindow, cfg.Match.RefreshTimeout,
		cfg.Match.DefaultPageSize, cfg.Match.MaxPageSize,
		cfg.Redis.TTL,
	)

	authHandler := handler.NewAuthHandler(authUC, validate)
	profileHandler := handler.NewProfileHandler(profileUC, validate)
	matchHandler := handler.NewMatchHandler(pairUC, refreshUC)
	recHandler := handler.NewRecommendationHandler(recUC)

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())
	profileHandler.RegisterRoutes(protected)
	matchHandler.RegisterRoutes(protected)
	recHandler.RegisterRoutes(protected)
}
