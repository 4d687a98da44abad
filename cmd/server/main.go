package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"
	"github.com/ntwari02/proviQuiz/internal/database/mongo"
	"github.com/ntwari02/proviQuiz/internal/database/redis"
	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/handlers"
	"github.com/ntwari02/proviQuiz/internal/metrics"
	"github.com/ntwari02/proviQuiz/internal/repository"
	"github.com/ntwari02/proviQuiz/internal/repository/memory"
	"github.com/ntwari02/proviQuiz/internal/service"
	"github.com/ntwari02/proviQuiz/internal/storage"
	"github.com/ntwari02/proviQuiz/pkg/discovery"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// setupLogging sends the standard logger to a daily file under dir. When the
// directory cannot be used the logger stays on stderr.
func setupLogging(dir string) (*os.File, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(dir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	return file, nil
}

type stores struct {
	questions service.QuestionStore
	users     service.UserStore
	exams     service.ExamSessionStore
	configs   service.ExamConfigStore
	settings  service.SettingsStore
	analytics service.AnalyticsStore
}

// openStores uses MongoDB when MONGO_URI is set and the in-memory store otherwise.
func openStores(cfg *config.Config) (*stores, bool) {
	if cfg.MongoDB.URI == "" {
		log.Println("Warning: MONGO_URI is not set, using the in-memory store")
		db := memory.NewDB()
		return &stores{
			questions: db.Questions(),
			users:     db.Users(),
			exams:     db.ExamSessions(),
			configs:   db.ExamConfigs(),
			settings:  db.Settings(),
			analytics: db.Analytics(),
		}, false
	}

	db, err := mongo.Connect(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	examRepo := repository.NewExamSessionRepository(db)
	configRepo := repository.NewExamConfigRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for name, indexer := range map[string]interface{ CreateIndexes(context.Context) error }{
		"questions":    questionRepo,
		"users":        userRepo,
		"examSessions": examRepo,
		"examConfigs":  configRepo,
	} {
		if err := indexer.CreateIndexes(ctx); err != nil {
			log.Printf("Warning: Failed to create %s indexes: %v", name, err)
		}
	}
	log.Println("Database indexes ensured")

	return &stores{
		questions: questionRepo,
		users:     userRepo,
		exams:     examRepo,
		configs:   configRepo,
		settings:  repository.NewSettingsRepository(db),
		analytics: repository.NewAnalyticsRepository(db),
	}, true
}

func openCache(cfg *config.Config) (service.Cache, bool) {
	client, err := redis.Connect(cfg.Redis)
	if err != nil {
		log.Println("Warning: Redis unavailable, using the in-memory cache")
		return memory.NewCache(), false
	}
	return repository.NewRedisRepository(client), true
}

func openPublisher(cfg *config.Config) event.Publisher {
	if cfg.RabbitMQ.URI == "" {
		log.Println("RABBITMQ_URI is not set, events are disabled")
		return event.NewDisabledPublisher()
	}
	publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
		return event.NewDisabledPublisher()
	}
	return publisher
}

func openImages(cfg *config.Config) service.ImageStore {
	if cfg.Storage.Endpoint == "" {
		log.Println("MINIO_ENDPOINT is not set, image uploads are disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	images, err := storage.NewImageStore(ctx, cfg.Storage)
	if err != nil {
		log.Printf("Warning: Failed to initialize image storage: %v", err)
		return nil
	}
	return images
}

func buildServices(cfg *config.Config, st *stores, cache service.Cache, publisher event.Publisher, images service.ImageStore) *handlers.Services {
	jwtService := service.NewJWTService(cfg.JWT)
	return &handlers.Services{
		JWT:         jwtService,
		Auth:        service.NewAuthService(st.users, jwtService, publisher, cfg.Exam.ResetTokenTTL),
		Google:      service.NewGoogleService(cfg.Google, cfg.Server.FrontendURL, st.users, cache, jwtService, publisher),
		Questions:   service.NewQuestionService(st.questions, images, publisher, cfg.Storage.MaxBytes),
		Exams:       service.NewExamService(st.questions, st.exams, cache, publisher, cfg.Exam),
		Users:       service.NewUserService(st.users, st.exams, publisher),
		Catalog:     service.NewCatalogService(st.questions, publisher),
		ExamConfigs: service.NewExamConfigService(st.configs, st.questions),
		Analytics:   service.NewAnalyticsService(st.analytics, st.users, st.questions, st.exams, st.configs, cfg.Exam.PassThreshold),
		Settings:    service.NewSettingsService(st.settings, cache, cfg.Exam.SettingsCacheTTL),
	}
}

func authLimiter(cfg config.RateLimitConfig) fiber.Handler {
	if cfg.AuthMax <= 0 {
		return nil
	}
	return limiter.New(limiter.Config{
		Max:        cfg.AuthMax,
		Expiration: cfg.AuthWindow,
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later.",
			})
		},
	})
}

func setupGRPCServer() *grpc.Server {
	s := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s, healthServer)

	reflection.Register(s)
	return s
}

func main() {
	cfg := config.ServiceConfig

	logFile, err := setupLogging(cfg.Server.LogDir)
	if err != nil {
		log.Printf("Warning: Failed to set up file logging, using stderr: %v", err)
	} else {
		defer logFile.Close()
	}

	st, usingMongo := openStores(cfg)
	cache, usingRedis := openCache(cfg)
	publisher := openPublisher(cfg)
	images := openImages(cfg)
	svc := buildServices(cfg, st, cache, publisher, images)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    int(cfg.Storage.MaxBytes) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recoverer.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", "Idempotency-Key", "Accept", "Origin"},
	}))
	app.Use(metrics.Middleware())
	app.Use(func(c fiber.Ctx) error {
		log.Printf("Received request: %s %s", c.Method(), c.Path())
		return c.Next()
	})

	metrics.RegisterRoutes(app)
	handlers.RegisterRoutes(app, svc, authLimiter(cfg.RateLimit))

	var registry *discovery.ServiceRegistry
	if cfg.Consul.ConsulAddress != "" {
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Printf("Warning: Service discovery init failed: %v", err)
		} else if err := registry.Register(); err != nil {
			log.Printf("Warning: %v", err)
			registry = nil
		}
	}

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	var grpcServer *grpc.Server
	if cfg.Server.GRPCPort != "" {
		grpcServer = setupGRPCServer()
		go func() {
			grpcListener, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
			if err != nil {
				log.Fatalf("Failed to listen for gRPC: %v", err)
			}

			log.Printf("Starting gRPC health server on port %s", cfg.Server.GRPCPort)
			if err := grpcServer.Serve(grpcListener); err != nil {
				log.Printf("gRPC server stopped: %v", err)
			}
		}()
	}

	go func() {
		log.Printf("Starting server on port %s (mongo=%t, redis=%t)", cfg.Server.Port, usingMongo, usingRedis)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	if err := publisher.Close(); err != nil {
		log.Printf("Error closing event publisher: %v", err)
	}

	if usingMongo {
		mongo.DisconnectMongo()
	}
	redis.Close()

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
