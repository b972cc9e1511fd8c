package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/api/handlers"
	"github.com/socialsight/socialsight/internal/api/middleware"
	job "github.com/socialsight/socialsight/internal/jobs"
	"github.com/socialsight/socialsight/internal/platforms"
	"github.com/socialsight/socialsight/internal/queue"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	platformPostRepo := repository.NewPlatformPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	registry := platforms.NewRegistry(*cfg)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	subscriptionService := service.NewSubscriptionService(userRepo, postRepo, socialAccountRepo)
	storageService := service.NewStorageService(*cfg)
	postService := service.NewPostService(db, postRepo, platformPostRepo, socialAccountRepo, mediaRepo, storageService, subscriptionService)
	publishService := service.NewPublishService(*cfg, registry, postRepo, platformPostRepo, socialAccountRepo, mediaRepo)
	platformService := service.NewPlatformService(*cfg, registry, socialAccountRepo, subscriptionService)
	analyticsService := service.NewAnalyticsService(analyticsRepo, postRepo, metricsRepo, subscriptionService)
	messageService := service.NewMessageService(conversationRepo, messageRepo, userRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/auth/register", auth.Register)
	app.Post("/auth/login", auth.Login)
	app.Post("/auth/logout", auth.Logout)

	webhook := handlers.NewWebhookHandler(*cfg)
	app.Get("/webhooks/facebook", webhook.VerifyFacebook)
	app.Post("/webhooks/facebook", webhook.ReceiveFacebook)
	app.Get("/webhooks/twitter", webhook.VerifyTwitterCRC)
	app.Post("/webhooks/twitter", webhook.ReceiveTwitter)

	platform := handlers.NewPlatformHandler(*cfg, platformService)
	app.Get("/auth/:platform/callback", platform.Callback)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/auth/:platform", platform.Connect)
	api.Get("/accounts", platform.ListAccounts)
	api.Get("/accounts/:id/pages", platform.ListPages)
	api.Delete("/accounts/:id", platform.Disconnect)

	user := handlers.NewUserHandler(userService, subscriptionService)
	api.Get("/user/profile", user.Profile)
	api.Put("/user/profile", user.UpdateProfile)
	api.Post("/user/:id/follow", user.Follow)
	api.Delete("/user/:id/follow", user.Unfollow)

	post := handlers.NewPostHandler(postService, publishService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.PostInfo)
	api.Put("/posts/:id", post.UpdatePost)
	api.Post("/posts/:id/publish", post.PublishNow)
	api.Post("/posts/:id/retry/:platform", post.RetryPost)
	api.Delete("/posts/:id", post.RemovePost)

	analytics := handlers.NewAnalyticsHandler(analyticsService)
	api.Get("/analytics/posts/:id", analytics.PostAnalytics)
	api.Get("/analytics/dashboard", analytics.Dashboard)
	api.Get("/analytics/engagement", analytics.Engagement)
	api.Get("/analytics/schedule", analytics.Schedule)
	api.Get("/analytics/content", analytics.Content)

	message := handlers.NewMessageHandler(messageService)
	api.Post("/messages", message.Send)
	api.Get("/messages/conversations", message.Conversations)
	api.Get("/messages/conversations/:id", message.History)
	api.Post("/messages/conversations/:id/read", message.MarkRead)
	api.Delete("/messages/:id", message.Delete)
	api.Get("/messages/unread", message.UnreadCount)
	api.Get("/messages/search", message.Search)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, registry, socialAccountRepo)
	publishJob := job.NewPublishJob(postRepo, publishService)
	cleanupJob := job.NewCleanupJob(postRepo)
	metricsJob := job.NewMetricsJob(*cfg, registry, postRepo, platformPostRepo, socialAccountRepo, metricsRepo)

	// queue
	queueW := queue.NewQueue(publishService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", publishJob.PublishDue)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 01h00m00s", cleanupJob.CleanupFailed)
	c.AddFunc("@every 24h00m00s", metricsJob.RefreshMetrics)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSchedulePost, queueW.HandleSchedulePostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
