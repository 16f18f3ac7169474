package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sankat-mitra/api/config"
	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/handlers"
	chat_handlers "github.com/sankat-mitra/api/handlers/chat"
	"github.com/sankat-mitra/api/services"
	"github.com/sankat-mitra/api/services/ragagent"
	"github.com/sankat-mitra/api/utils"
	"github.com/sankat-mitra/api/utils/auth"
	"github.com/sankat-mitra/api/utils/cache"
	"github.com/sankat-mitra/api/utils/middleware"
)

// SetupRoutes wires the service graph onto the Fiber app. The session
// directory is returned so the cron manager can share the same instance
// (its local pointer cache must see cron-side deletions).
func SetupRoutes(app *fiber.App, store database.Storage, getEnv *config.EnviornmentVariable) *services.SessionDirectory {
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "sankat-mitra-identity"
	}

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Secret: getEnv.JWT_SECRET,
		Issuer: jwtIssuer,
	})

	// Redis backs the cross-instance current-session pointer cache. The
	// directory degrades to local map + persisted pointer without it.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Session pointer cache will be local-only.", err)
		redisCache = nil
	}

	agent := ragagent.NewClient(ragagent.Config{
		DeploymentURL: getEnv.AGENT_DEPLOYMENT_URL,
		AccessKey:     getEnv.AGENT_ACCESS_KEY,
	})

	messageStore := services.NewMessageStore(store, getEnv.DELETE_BATCH_SIZE)
	directory := services.NewSessionDirectory(store, redisCache, messageStore)
	responder := services.NewResponder(directory, messageStore, agent, getEnv.CONTEXT_WINDOW_SIZE)
	lifecycle := services.NewLifecycleController(directory, messageStore)

	authMiddleware := middleware.NewAuthMiddleware(verifier, store)
	chatHandler := chat_handlers.NewChatHandler(lifecycle, responder)

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Chat routes (protected)
	chat := api.Group("/chat", authMiddleware.Required())
	chat.Get("/sessions", chatHandler.ListSessions)
	chat.Post("/sessions", chatHandler.CreateSession)
	chat.Get("/sessions/current", chatHandler.CurrentSession)
	chat.Post("/sessions/:id/select", chatHandler.SelectSession)
	chat.Patch("/sessions/:id", chatHandler.RenameSession)
	chat.Delete("/sessions/:id", chatHandler.DeleteSession)
	chat.Get("/sessions/:id/messages", chatHandler.GetMessages)
	chat.Post("/query", chatHandler.Query)

	return directory
}
