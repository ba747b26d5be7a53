package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-chat-backend/internal/ai"
	"pdf-chat-backend/internal/config"
	"pdf-chat-backend/internal/logger"
	"pdf-chat-backend/internal/telemetry"
	"pdf-chat-backend/middleware"
	"pdf-chat-backend/routes"
	"pdf-chat-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.OTLPEndpoint, cfg.TraceSampleRatio)
		if err != nil {
			log.Fatal("Failed to initialize tracer:", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				logger.Warn("Failed to shutdown tracer", "error", err)
			}
		}()
		logger.Info("Tracing initialized", "endpoint", cfg.OTLPEndpoint)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Long-lived service handles, created once and shared by all requests
	store := services.NewVectorStore(mongoClient, cfg)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	store.EnsureVectorIndex(indexCtx)
	cancelIndex()

	embedCtx, cancelEmbed := context.WithTimeout(context.Background(), 10*time.Second)
	embedder, err := ai.NewEmbedder(embedCtx, cfg)
	cancelEmbed()
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	if closer, ok := embedder.(io.Closer); ok {
		defer closer.Close()
	}

	chatClient := ai.NewChatClient(cfg.OpenAIAPIKey, cfg.OpenAIChatModel)

	chunker := services.NewTextChunker(cfg.MaxChunkSize, cfg.ChunkOverlap)
	ingestion := services.NewIngestionService(chunker, embedder, store)
	qa := services.NewQAService(chatClient, embedder, store, cfg.RetrievalK)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.EnrichTrace())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(ctx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "mongodb": "connected"})
	})

	// Setup routes
	routes.SetupDocumentRoutes(router, cfg, ingestion, store)
	routes.SetupChatRoutes(router, qa)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
