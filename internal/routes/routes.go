package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/CoachChatBack/internal/config"
	"github.com/saeid-a/CoachChatBack/internal/handlers"
	"github.com/saeid-a/CoachChatBack/internal/middleware"
	"github.com/saeid-a/CoachChatBack/internal/models"
	"github.com/saeid-a/CoachChatBack/internal/repository"
	"github.com/saeid-a/CoachChatBack/internal/services"
	chatws "github.com/saeid-a/CoachChatBack/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) error {
	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var storageService services.StorageService
	if cfg.StorageConfigured() {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	chatHub := chatws.NewHub()
	go chatHub.Run()

	chatService := services.NewChatService(
		db,
		conversationRepo,
		messageRepo,
		notificationRepo,
		userRepo,
		storageService,
		chatHub,
	)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	chatHandler := handlers.NewChatHandler(chatService, cfg.Debug)
	traineeChatHandler := handlers.NewTraineeChatHandler(chatService, cfg.Debug)
	notificationHandler := handlers.NewNotificationHandler(chatService, cfg.Debug)
	wsHandler := handlers.NewWSHandler(chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	coach := authProtected.Group("", middleware.RequireRole(models.RoleCoach))
	coach.Get("/conversations", chatHandler.ListConversations)
	coach.Get("/conversations/:traineeId", chatHandler.GetConversation)
	coach.Post("/conversations/:traineeId/messages", chatHandler.SendMessage)
	coach.Post("/conversations/:traineeId/files", chatHandler.SendFile)
	coach.Post("/conversations/:conversationId/read", chatHandler.MarkConversationRead)
	coach.Delete("/conversations/:conversationId", chatHandler.DeleteConversation)
	coach.Delete("/messages/:messageId", chatHandler.DeleteMessage)
	coach.Get("/notifications", notificationHandler.List)
	coach.Get("/notifications/unread-count", notificationHandler.UnreadCount)
	coach.Post("/notifications/read", notificationHandler.MarkAllRead)
	coach.Get("/stats", chatHandler.Stats)

	trainee := authProtected.Group("/trainee/chat", middleware.RequireRole(models.RoleTrainee))
	trainee.Get("/conversation", traineeChatHandler.GetConversation)
	trainee.Post("/messages", traineeChatHandler.SendMessage)
	trainee.Post("/files", traineeChatHandler.SendFile)

	api.Use("/v1/ws", wsHandler.Upgrade)
	api.Get("/v1/ws", websocket.New(wsHandler.Handle))

	registerDocs(app, cfg)

	return nil
}
