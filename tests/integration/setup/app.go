package setup

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/sportmeetapp/sportmeet/internal/delivery/http"
	"github.com/sportmeetapp/sportmeet/internal/delivery/http/middleware"
	"github.com/sportmeetapp/sportmeet/internal/delivery/http/route"
	tracemiddleware "github.com/sportmeetapp/sportmeet/internal/middleware"
	"github.com/sportmeetapp/sportmeet/internal/repository"
	"github.com/sportmeetapp/sportmeet/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

func SetupTestApp(t *testing.T, pgURL, redisURL, minioURL, mailhogSMTP string) (*fiber.App, *pgxpool.Pool, *redis.Client, *minio.Client) {
	t.Log("Setting up test application...")

	ctx := context.Background()

	testConfig := koanf.New(".")
	_ = testConfig.Set("JWT_SECRET_KEY", "test-secret-key-for-jwt-token-generation")
	_ = testConfig.Set("MINIO_URL", minioURL)
	_ = testConfig.Set("MINIO_HTTP", "http://")
	_ = testConfig.Set("MINIO_BUCKET_NAME", "sportmeet-test")

	// mailhogSMTP format: host:port
	smtpParts := strings.Split(mailhogSMTP, ":")
	smtpHost := smtpParts[0]
	smtpPort, _ := strconv.Atoi(smtpParts[1])

	_ = testConfig.Set("SMTP_HOST", smtpHost)
	_ = testConfig.Set("SMTP_PORT", smtpPort)
	_ = testConfig.Set("SENDER_NAME", "Sportmeet Test <noreply@sportmeet.test>")
	_ = testConfig.Set("SENDER_EMAIL", "noreply@sportmeet.test")
	_ = testConfig.Set("SENDER_PASSWORD", "")

	t.Log("Connecting to test PostgreSQL...")
	dbPool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		t.Fatalf("failed to connect to test db: %v", err)
	}

	t.Log("Connecting to test Redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
		DB:   0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}

	t.Log("Connecting to test MinIO...")
	minioClient, err := minio.New(minioURL, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("failed to connect to minio: %v", err)
	}

	bucketName := "sportmeet-test"
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		t.Fatalf("failed to check minio bucket: %v", err)
	}

	if !exists {
		t.Logf("Creating MinIO bucket: %s", bucketName)
		err = minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			t.Fatalf("failed to create minio bucket: %v", err)
		}
	} else {
		t.Logf("MinIO bucket already exists: %s", bucketName)
	}

	zapLogger := zap.NewExample()
	defer func() {
		_ = zapLogger.Sync()
	}()

	userRepository := repository.NewUserRepository(zapLogger, dbPool, redisClient, minioClient)
	eventRepository := repository.NewEventRepository(zapLogger, dbPool, redisClient)
	participationRepository := repository.NewParticipationRepository(zapLogger, dbPool, redisClient)

	userUsecase := usecase.NewUserUsecase(userRepository, dbPool, zapLogger, testConfig)
	eventUsecase := usecase.NewEventUsecase(eventRepository, participationRepository, dbPool, zapLogger, testConfig)
	membershipUsecase := usecase.NewMembershipUsecase(participationRepository, eventRepository, userRepository, dbPool, zapLogger, testConfig)

	userController := http.NewUserController(userUsecase, zapLogger, testConfig)
	eventController := http.NewEventController(eventUsecase, zapLogger, testConfig)
	membershipController := http.NewMembershipController(membershipUsecase, zapLogger, testConfig)

	authMiddleware := middleware.NewAuthMiddleware(nil, zapLogger, testConfig, userUsecase)

	fiberApp := fiber.New(fiber.Config{
		AppName:               "Sportmeet Test",
		DisableStartupMessage: true,
		DisableKeepalive:      true, // Important for tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	fiberApp.Use(tracemiddleware.TraceLoggerMiddleware(zapLogger))

	routeConfig := route.RouteConfig{
		App:                  fiberApp,
		UserController:       userController,
		EventController:      eventController,
		MembershipController: membershipController,
		AuthMiddleware:       authMiddleware,
	}

	routeConfig.SetupRoute()

	t.Log("Test application setup completed successfully")

	return fiberApp, dbPool, redisClient, minioClient
}
