package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"task-manager-be/internal/config"
	"task-manager-be/internal/controller"
	"task-manager-be/internal/entity"
	"task-manager-be/internal/pkg/clock"
	"task-manager-be/internal/pkg/logger"
	"task-manager-be/internal/pkg/serverutils"
	"task-manager-be/internal/repository/contract"
	"task-manager-be/internal/repository/memory"
	"task-manager-be/internal/repository/redisstore"
	"task-manager-be/internal/service"
	internalWS "task-manager-be/internal/websocket"
	pktNats "task-manager-be/pkg/nats"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	TaskController controller.ITaskController

	// Protected is the auth middleware applied to session-gated routes.
	Protected fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SessionService  service.ISessionService

	// WebSockets
	WebSocketHandler *internalWS.Handler
	WebSocketHub     *internalWS.Hub

	natsPublisher *pktNats.Publisher
	logger        logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	clk := clock.NewReal()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Storage
	taskRepo := memory.NewTaskRepository()
	userRepo := memory.NewUserRepository()

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	var sessionStore contract.SessionStore
	if cfg.App.SessionStore == "redis" && rdb != nil {
		sessionStore = redisstore.NewSessionStore(rdb)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionStore = memory.NewSessionStore()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// 4. Infrastructure
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := internalWS.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Search.ActivityTopic, pubSub, clk)

	sessionService := service.NewSessionService(
		userRepo,
		sessionStore,
		cfg.Session,
		clk,
		publisherService,
		natsPub,
		sysLogger,
	)
	sessionService.SetNotifier(wsHub)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Search.ActivityTopic,
		sessionService,
		sysLogger,
	)

	searchService := service.NewSearchService(taskRepo, sessionService)
	taskService := service.NewTaskService(taskRepo, wsHub, sysLogger)

	// 6. Seed the demo account
	seedDemoUser(userRepo, cfg.Auth, sysLogger)

	// 7. Controllers & Handlers
	authController := controller.NewAuthController(sessionService)
	taskController := controller.NewTaskController(taskService, searchService)

	wsHandler := internalWS.NewHandler(
		wsHub,
		sessionService,
		searchService,
		publisherService,
		cfg.Search.DebounceDelay,
		wsLogger,
	)

	// 8. Start the background sweep
	sessionService.StartMonitor()

	return &Container{
		AuthController:   authController,
		TaskController:   taskController,
		Protected:        serverutils.SessionMiddleware(sessionService, publisherService),
		ConsumerService:  consumerService,
		SessionService:   sessionService,
		WebSocketHandler: wsHandler,
		WebSocketHub:     wsHub,
		natsPublisher:    natsPub,
		logger:           sysLogger,
	}
}

// Shutdown stops the background workers and flushes the logs.
func (c *Container) Shutdown() {
	c.SessionService.StopMonitor()
	if c.natsPublisher != nil {
		c.natsPublisher.Close()
	}
	_ = c.logger.Sync()
}

func seedDemoUser(userRepo contract.UserRepository, cfg config.AuthConfig, log logger.ILogger) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("bootstrap", "failed to hash demo password", map[string]interface{}{"error": err.Error()})
		return
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        cfg.DemoEmail,
		FullName:     cfg.DemoName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := userRepo.Create(context.Background(), user); err != nil {
		log.Error("bootstrap", "failed to seed demo user", map[string]interface{}{"error": err.Error()})
		return
	}

	log.Info("bootstrap", "demo user seeded", map[string]interface{}{"email": cfg.DemoEmail})
}
