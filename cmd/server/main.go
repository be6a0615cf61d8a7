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
	config "github.com/vidscribe/social-api/configs"
	"github.com/vidscribe/social-api/internal/api/handlers"
	"github.com/vidscribe/social-api/internal/api/middleware"
	job "github.com/vidscribe/social-api/internal/jobs"
	"github.com/vidscribe/social-api/internal/queue"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/service"
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
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

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

	// The publish endpoint is called cross-origin by the dashboard; its
	// preflight answers must stay permissive.
	app.Use("/social-publish", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST,OPTIONS",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	}))

	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	accountRepo := repository.NewSocialAccountRepository(db)
	postRepo := repository.NewPostRepository(db)
	assetRepo := repository.NewMediaAssetRepository(db)
	historyRepo := repository.NewPostingHistoryRepository(db)

	r2Service := service.NewR2Service(*cfg)
	telegramService := service.NewTelegramService(*cfg, assetRepo)
	instagramService := service.NewInstagramService(*cfg)
	tiktokService := service.NewTiktokService(*cfg, accountRepo)
	platformService := service.NewPlatformService(*cfg, accountRepo, postRepo, telegramService, instagramService, tiktokService)
	postService := service.NewPostService(postRepo, accountRepo, assetRepo, historyRepo, r2Service, telegramService, instagramService, tiktokService)

	queueW := queue.NewQueue(postRepo, accountRepo, historyRepo, telegramService, instagramService, tiktokService)

	publish := handlers.NewPublishHandler(*cfg, postRepo, queueW)
	app.Post("/social-publish", publish.Publish)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)
	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	platform := handlers.NewPlatformHandler(platformService)
	api.Post("/accounts/connect", platform.ConnectAccount)
	api.Post("/accounts/disconnect", platform.DisconnectAccount)
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/stats/refresh", platform.RefreshStats)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts/create", post.CreatePost)
	api.Post("/posts/publish", post.PublishNow)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)
	api.Get("/history", post.ListHistory)

	// cron jobs
	sweepJob := job.NewPublishSweepJob(postRepo, queue.NewClient(asynqClient))
	tokenRefreshJob := job.NewTokenRefreshJob(accountRepo, tiktokService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", sweepJob.Run)
	c.AddFunc("@every 00h30m00s", tokenRefreshJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

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

	gracefulShutdown(app, db, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
