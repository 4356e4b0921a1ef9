package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/makerlink/makerlink-backend/internal/config"
	"github.com/makerlink/makerlink-backend/internal/handler"
	"github.com/makerlink/makerlink-backend/internal/middleware"
	"github.com/makerlink/makerlink-backend/internal/migration"
	"github.com/makerlink/makerlink-backend/internal/repository"
	"github.com/makerlink/makerlink-backend/internal/repository/fallback"
	"github.com/makerlink/makerlink-backend/internal/service"
	"github.com/makerlink/makerlink-backend/internal/ws"
	pkgjwt "github.com/makerlink/makerlink-backend/pkg/jwt"
	pkglogger "github.com/makerlink/makerlink-backend/pkg/logger"
	pkgredis "github.com/makerlink/makerlink-backend/pkg/redis"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL is the primary store. Startup requires it (member and follow
	// lookups have no fallback); runtime failures are absorbed per call
	// by the file-backed fallback wrappers below.
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		pkglogger.Warn("Migration warning: %v", err)
	}

	// Redis is optional; without it the hub delivers to local clients only
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	// Fallback stores are always constructed; the failover wrappers
	// reach them per call when the primary fails.
	fbMessages, err := fallback.NewMessageStore(cfg.Fallback.Dir)
	if err != nil {
		log.Fatalf("Failed to create fallback message store: %v", err)
	}
	defer fbMessages.Close()
	fbNotifications, err := fallback.NewNotificationStore(cfg.Fallback.Dir)
	if err != nil {
		log.Fatalf("Failed to create fallback notification store: %v", err)
	}
	defer fbNotifications.Close()

	messageRepo := repository.NewFailoverMessageRepository(
		repository.NewMessageRepository(db), fbMessages)
	notificationRepo := repository.NewFailoverNotificationRepository(
		repository.NewNotificationRepository(db), fbNotifications)
	memberRepo := repository.NewMemberRepository(db)
	followRepo := repository.NewFollowRepository(db)

	hub := ws.NewHub(redisClient)
	go hub.Run()
	defer hub.Stop()

	notificationService := service.NewNotificationService(notificationRepo, hub)
	messageService := service.NewMessageService(messageRepo, memberRepo, followRepo, notificationService)

	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	router := buildRouter(cfg, jwtManager, hub, messageService, notificationService)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Info("Listening on :%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	pkglogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.Error("Shutdown error: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	mcfg := mysqldriver.NewConfig()
	mcfg.User = cfg.Database.User
	mcfg.Passwd = cfg.Database.Password
	mcfg.Net = "tcp"
	mcfg.Addr = fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	mcfg.DBName = cfg.Database.Name
	mcfg.ParseTime = true
	mcfg.Loc = time.Local
	mcfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := gorm.Open(mysql.Open(mcfg.FormatDSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func buildRouter(
	cfg *config.Config,
	jwtManager *pkgjwt.Manager,
	hub *ws.Hub,
	messageService service.MessageService,
	notificationService service.NotificationService,
) *gin.Engine {
	if cfg.Server.Env != "local" && cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	messageHandler := handler.NewMessageHandler(messageService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	wsHandler := handler.NewWSHandler(hub, cfg.CORS.AllowedOrigins)

	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtManager))
	{
		api.POST("/messages", messageHandler.SendMessage)
		api.GET("/messages/conversations", messageHandler.ListConversations)
		api.GET("/messages/with/:partnerID", messageHandler.GetConversation)

		api.GET("/notifications", notificationHandler.GetList)
		api.GET("/notifications/unread-count", notificationHandler.GetUnreadCount)
		api.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		api.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		api.GET("/ws/notifications", wsHandler.Connect)
	}

	return router
}
