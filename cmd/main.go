package main

import (
	"context"
	"net/http"
	"time"

	"studiohub/backend/internal/api/handler"
	"studiohub/backend/internal/chathub"
	"studiohub/backend/internal/config"
	"studiohub/backend/internal/models"
	"studiohub/backend/internal/notify"
	"studiohub/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.MessageRead{},
	)
	if err != nil {
		logrus.Fatalf("failed to run migrations: %v", err)
	}

	logrus.Info("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is not set")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	logrus.Info("starting studiohub backend")

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	var notifier chathub.OfflineNotifier = chathub.NoopNotifier{}
	if cfg.TelegramBotToken != "" {
		tn, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, s)
		if err != nil {
			logrus.Fatalf("failed to start telegram notifier: %v", err)
		}
		notifier = tn
	}

	hub := chathub.NewHub(s, notifier)
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s, []byte(cfg.JWTSecret))

	r.POST("/api/session", h.CreateSession)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api", h.AuthRequired())
	{
		api.GET("/conversations", h.ListConversations)
		api.GET("/conversations/:id/messages", h.ListConversationMessages)
		api.POST("/conversations/:id/read", h.MarkConversationRead)
		api.POST("/messages", h.SendMessage)
		api.DELETE("/messages/:id", h.DeleteMessage)
	}

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	logrus.Infof("listening on %s", cfg.ListenAddr)
	logrus.Fatal(server.ListenAndServe())
}
