package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/zekariasasaminew/campusEx/internal/cache"
	"github.com/zekariasasaminew/campusEx/internal/config"
	"github.com/zekariasasaminew/campusEx/internal/db"
	"github.com/zekariasasaminew/campusEx/internal/handlers"
	"github.com/zekariasasaminew/campusEx/internal/middleware"
	"github.com/zekariasasaminew/campusEx/internal/observability"
	"github.com/zekariasasaminew/campusEx/internal/rabbitmq"
	"github.com/zekariasasaminew/campusEx/internal/repositories"
	"github.com/zekariasasaminew/campusEx/internal/telemetry"
)

const serviceName = "campusex-messaging"

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown failed: %v", err)
		}
	}()

	eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	emitter := telemetry.NewAuditEmitter(auditPublisher, "audit.messaging", serviceName, cfg.Environment)

	var displayNameCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr)
		if err != nil {
			log.Printf("display name cache disabled: %v", err)
		} else {
			displayNameCache = redisCache
			defer redisCache.Close()
		}
	}

	convRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	receiptRepo := repositories.NewReadReceiptRepo(database)
	listingRepo := repositories.NewListingRepo(database)
	userRepo := repositories.NewUserRepo(database)
	directory := repositories.NewCachedUserRepo(userRepo, displayNameCache)

	conversationHandler := handlers.NewConversationHandler(convRepo, listingRepo, messageRepo, receiptRepo, directory, emitter)
	messageHandler := handlers.NewMessageHandler(convRepo, messageRepo, receiptRepo)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(userRepo)

	router.POST("/conversations", authMiddleware, conversationHandler.StartConversation)
	router.GET("/conversations", authMiddleware, conversationHandler.GetInbox)
	router.GET("/conversations/:conversation_id", authMiddleware, conversationHandler.GetConversation)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, messageHandler.PostMessage)
	router.PATCH("/conversations/:conversation_id/messages/:message_id", authMiddleware, messageHandler.EditMessage)
	router.DELETE("/conversations/:conversation_id/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.POST("/conversations/:conversation_id/read", authMiddleware, messageHandler.MarkRead)

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
