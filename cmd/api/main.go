package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheAdapter "msg-relay/internal/infrastructure/cache/adapter"
	cport "msg-relay/internal/infrastructure/cache/port"
	"msg-relay/internal/infrastructure/database"
	queueAdapter "msg-relay/internal/infrastructure/queue/adapter"
	qport "msg-relay/internal/infrastructure/queue/port"
	"msg-relay/internal/infrastructure/realtime"
	"msg-relay/internal/logger"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	"msg-relay/internal/pkg/messaging/application/task"
	"msg-relay/internal/pkg/messaging/persistence/repository/adapter"

	"msg-relay/cmd/api/router"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	repo := adapter.NewPgMessagingRepository(pool)

	// Redis-backed concerns are optional: without REDIS_URL the service runs
	// with no cache and no retry queue.
	var cache cport.Cache
	var queue qport.Client
	var worker *queueAdapter.AsynqServer
	if os.Getenv("REDIS_URL") != "" {
		redisCache, err := cacheAdapter.NewRedisAdapter()
		if err != nil {
			logger.Log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisCache.Close() }()
		cache = redisCache

		client, err := queueAdapter.NewAsynqClientFromEnv()
		if err != nil {
			logger.Log.Fatal("failed to create queue client", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		queue = client

		worker, err = queueAdapter.NewAsynqServer()
		if err != nil {
			logger.Log.Fatal("failed to create queue server", zap.Error(err))
		}
	}

	hub := realtime.NewHub()
	defer hub.Close()

	strict := os.Getenv("PERSIST_STRICT") == "true"
	dispatcher := dispatch.NewDispatcher(repo, queue, cache, hub, strict)

	if worker != nil {
		task.RegisterRecordMessageTask(worker, repo)
		go func() {
			if err := worker.Run(context.Background()); err != nil {
				logger.Log.Error("queue server stopped", zap.Error(err))
			}
		}()
	}

	r := gin.New()
	r.Use(logger.RequestLogger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	router.RegisterRoutes(r, repo, dispatcher, cache, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if worker != nil {
		_ = worker.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}
