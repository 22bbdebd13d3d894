package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/lumeo-app/backend/internal/handlers"
	"github.com/lumeo-app/backend/internal/middleware"
	"github.com/lumeo-app/backend/internal/repositories"
	"github.com/lumeo-app/backend/pkg/config"
	"github.com/lumeo-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	logger.Info.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *mongo.Database, cfg *config.Config) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "Hello, World!"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)
	favoriteRepo := repositories.NewMongoFavoriteRepository(db)
	conversationRepo := repositories.NewMongoConversationRepository(db)
	messageRepo := repositories.NewMongoMessageRepository(db)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	logger.Info.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	logger.Info.Println("JWT authentication middleware applied to /api group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)
	logger.Info.Println("User routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo)
	postHandler.RegisterPostRoutes(api)
	logger.Info.Println("Post routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo)
	commentHandler.RegisterCommentRoutes(api)
	logger.Info.Println("Comment routes configured.")

	// Favorite routes
	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo)
	favoriteHandler.RegisterFavoriteRoutes(api)
	logger.Info.Println("Favorite routes configured.")

	// Conversation and message routes
	conversationHandler := handlers.NewConversationHandler(conversationRepo, messageRepo, userRepo)
	conversationHandler.RegisterConversationRoutes(api)
	logger.Info.Println("Conversation routes configured.")

	logger.Info.Println("All routes configured.")
}
