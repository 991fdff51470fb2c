package app

import (
	"fmt"
	"time"

	"dealroom_backend/internal/auth"
	"dealroom_backend/internal/cache"
	"dealroom_backend/internal/config"
	"dealroom_backend/internal/handlers"
	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"
	"dealroom_backend/internal/routes"
	"dealroom_backend/internal/services"
	"dealroom_backend/internal/settlement"
	"dealroom_backend/internal/tasks"
	"dealroom_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	auth.Init(cfg.JWT.Secret, cfg.JWT.TTL)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := migrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	logger.Info("Database connected")

	rdb, err := cache.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	logger.Info("Redis connected")

	taskClient := tasks.NewClient(rdb)
	defer taskClient.Close()

	var notifier settlement.Notifier = settlement.NoopNotifier{}
	if cfg.Settlement.RPCURL != "" {
		notifier = settlement.NewRPCNotifier(cfg.Settlement.RPCURL)
	}
	processor := tasks.NewTaskProcessor(notifier)
	taskServer := tasks.NewServer(rdb)
	go func() {
		if err := tasks.Run(taskServer, processor); err != nil {
			logger.Fatal("Task server error", "error", err)
		}
	}()

	router := SetupRouter(cfg, gormDB, rdb, taskClient)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services, the websocket hub and routes.
// Split out so tests can build the full engine against their own stores.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, rdb *redis.Client, taskClient *asynq.Client) *gin.Engine {
	userRepo := repositories.NewUserRepository(gormDB)
	dealRepo := repositories.NewDealRepository(gormDB)
	messageRepo := repositories.NewMessageRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	reviewRepo := repositories.NewReviewRepository(gormDB)
	exchangeRepo := repositories.NewExchangeRepository(gormDB)

	manager := ws.NewManager(userRepo)

	notificationSvc := services.NewNotificationService(notificationRepo, manager)
	roomSvc := services.NewRoomService(dealRepo, messageRepo, reviewRepo)
	chatSvc := services.NewChatService(dealRepo, messageRepo, notificationSvc, manager)
	disputeSvc := services.NewDisputeService(dealRepo, userRepo, notificationSvc, tasks.NewDispatcher(taskClient))
	reviewSvc := services.NewReviewService(dealRepo, reviewRepo)

	listingCache := cache.NewListingCache(rdb, 30*time.Second)
	exchangeSvc := services.NewExchangeService(exchangeRepo, reviewRepo, listingCache)

	appHandlers := &handlers.AppHandlers{
		ExchangeHandler: handlers.NewExchangeHandler(exchangeSvc),
		ReviewHandler:   handlers.NewReviewHandler(reviewSvc),
	}
	wsHandler := ws.NewHandler(manager, roomSvc, chatSvc, disputeSvc, notificationSvc)

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidations()
	router := gin.Default()
	routes.RegisterRoutes(router, appHandlers, wsHandler)
	return router
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Exchange{},
		&models.Deal{},
		&models.DealEscrow{},
		&models.Message{},
		&models.Attachment{},
		&models.Notification{},
		&models.Review{},
	)
}
