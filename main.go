package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"execpanel/config"
	"execpanel/handler"
	"execpanel/middleware"
	"execpanel/repository"
	"execpanel/services"
	"execpanel/usecase"
	"execpanel/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	// Check required environment variables
	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"PANEL_COLLECTION",
		"REDIS_URL",
		"PORT",
	}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
	// Initialize MongoDB connection
	utils.InitMongoClient()
}

func setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.EnhancedRecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Document cache is optional: without Redis the store still works,
	// it just always reads from the collection.
	cacheConfig := config.LoadCacheConfig()
	cache, err := services.NewDocumentCache(cacheConfig.RedisURL, cacheConfig.TTL)
	if err != nil {
		log.Printf("Document cache unavailable, continuing without it: %v", err)
		cache = nil
	}
	services.GlobalDocumentCache = cache

	docRepo := repository.GetDocumentRepo(utils.MongoClient)
	if cache != nil {
		docRepo.Cache = cache
	}

	state := usecase.NewAppState(context.Background(), docRepo)
	notify := usecase.NewLogNotifier()

	clipboard := usecase.NewLogClipboard()

	tasksService := usecase.NewTasksService(state, clipboard, notify)
	sopService := usecase.NewSopService(state, clipboard, notify)
	sessionService := usecase.NewSessionService(state, usecase.NewLogLinkPresenter(), notify)
	historyService := usecase.NewHistoryService(state)
	settingsService := usecase.NewSettingsService(state, notify)

	taskHandler := handler.NewTaskHandler(tasksService)
	sopHandler := handler.NewSopHandler(sopService)
	sessionHandler := handler.NewSessionHandler(sessionService, historyService, sopService)
	historyHandler := handler.NewHistoryHandler(historyService)
	settingsHandler := handler.NewSettingsHandler(settingsService, sessionService)
	healthHandler := handler.NewHealthHandler(utils.MongoClient, cache)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("/", taskHandler.ListTasks)
			tasks.POST("/", taskHandler.CreateTask)
			tasks.GET("/recommended", taskHandler.RecommendedTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/skip", taskHandler.SkipTask)
			tasks.POST("/:id/copy-links", taskHandler.CopyLinks)
			tasks.POST("/:id/notes", taskHandler.AddNote)
			tasks.PUT("/:id/note-draft", taskHandler.SaveNoteDraft)
		}

		sops := api.Group("/sops")
		{
			sops.GET("/", sopHandler.ListSops)
			sops.GET("/:key", sopHandler.GetSop)
			sops.PUT("/:key", sopHandler.PutSop)
			sops.POST("/:key/rename", sopHandler.RenameSop)
			sops.DELETE("/:key", sopHandler.DeleteSop)
			sops.POST("/:key/copy", sopHandler.CopySop)
		}

		session := api.Group("/session")
		{
			session.GET("/", sessionHandler.Status)
			session.POST("/start", sessionHandler.StartSession)
			session.POST("/complete", sessionHandler.CompleteSession)
			session.POST("/abandon", sessionHandler.AbandonSession)
			session.POST("/fail-reason", sessionHandler.ResolveFailReason)
		}

		history := api.Group("/history")
		{
			history.GET("/", historyHandler.ListHistory)
			history.POST("/:id/self-compare", historyHandler.AttachSelfCompare)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/", settingsHandler.GetSettings)
			settings.PUT("/", settingsHandler.UpdateSettings)
		}

		api.GET("/stats", settingsHandler.GetStats)
		api.POST("/admin/clear", settingsHandler.ClearData)
	}

	return router
}

func main() {
	router := setupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
