package config

import (
	http "github.com/sportmeetapp/sportmeet/internal/delivery/http"
	"github.com/sportmeetapp/sportmeet/internal/delivery/http/middleware"
	"github.com/sportmeetapp/sportmeet/internal/delivery/http/route"
	"github.com/sportmeetapp/sportmeet/internal/repository"
	"github.com/sportmeetapp/sportmeet/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router  *fiber.App
	DB      *pgxpool.Pool
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
	MinIO   *minio.Client
}

func Server(config *ServerConfig) {
	userRepository := repository.NewUserRepository(config.Log, config.DB, config.DBCache, config.MinIO)
	eventRepository := repository.NewEventRepository(config.Log, config.DB, config.DBCache)
	participationRepository := repository.NewParticipationRepository(config.Log, config.DB, config.DBCache)

	userUsecase := usecase.NewUserUsecase(userRepository, config.DB, config.Log, config.Config)
	eventUsecase := usecase.NewEventUsecase(eventRepository, participationRepository, config.DB, config.Log, config.Config)
	membershipUsecase := usecase.NewMembershipUsecase(participationRepository, eventRepository, userRepository, config.DB, config.Log, config.Config)

	userController := http.NewUserController(userUsecase, config.Log, config.Config)
	eventController := http.NewEventController(eventUsecase, config.Log, config.Config)
	membershipController := http.NewMembershipController(membershipUsecase, config.Log, config.Config)

	authMiddleware := middleware.NewAuthMiddleware(config.Router, config.Log, config.Config, userUsecase)

	routeConfig := route.RouteConfig{
		App:                  config.Router,
		UserController:       userController,
		EventController:      eventController,
		MembershipController: membershipController,
		AuthMiddleware:       authMiddleware,
	}

	routeConfig.SetupRoute()
}
