package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"progression-service/config"
	"progression-service/internal/handlers"
	"progression-service/internal/middleware"
	"progression-service/internal/repository"
	"progression-service/internal/service"
	"progression-service/pkg/cache"
	"progression-service/pkg/database"
	"progression-service/pkg/messaging"

	_ "progression-service/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Progression Service API
// @version 1.0

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	cfg := config.Load()
	log.Println("Configuration loaded")

	pgClient, err := database.NewPostgresClient(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("Connected to PostgreSQL")
	defer pgClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgClient.InitSchema(ctx); err != nil {
		log.Printf("Warning: Failed to initialize PostgreSQL schema: %v", err)
	} else {
		log.Println("PostgreSQL schema initialized")
	}
	cancel()

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisClient = nil
	} else {
		log.Println("Connected to Redis")
		defer redisClient.Close()
	}

	rabbitClient, err := messaging.NewRabbitMQClient(&cfg.RabbitMQ)
	if err != nil {
		log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		rabbitClient = nil
	} else {
		log.Println("Connected to RabbitMQ")
		defer rabbitClient.Close()
	}

	var publisher service.Publisher
	if rabbitClient != nil {
		publisher = rabbitClient
	}

	db := pgClient.GetDB()
	progressionRepo := repository.NewProgressionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(redisClient, db, publisher, cfg.JWT.Secret)
	gamificationService := service.NewGamificationService(progressionRepo, userRepo, redisClient, publisher)
	progressService := service.NewProgressService(progressionRepo, answerRepo, userRepo, publisher)

	authHandler := handlers.NewAuthHandler(authService)
	gamificationHandler := handlers.NewGamificationHandler(gamificationService)
	progressHandler := handlers.NewProgressHandler(progressService)

	var blacklist middleware.BlacklistChecker
	if redisClient != nil {
		blacklist = authService.AuthRepo()
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "progression-service",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		if redisClient == nil || rabbitClient == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/verify", authHandler.VerifyCode)
		authGroup.POST("/refresh", authHandler.RefreshToken)
	}

	authProtected := router.Group("/auth")
	authProtected.Use(middleware.JWTAuth(cfg.JWT.Secret, blacklist))
	{
		authProtected.POST("/logout", authHandler.Logout)
		authProtected.POST("/logout-all", authHandler.LogoutAll)
	}

	gamificationGroup := router.Group("/gamification")
	gamificationGroup.Use(middleware.JWTAuth(cfg.JWT.Secret, blacklist))
	{
		gamificationGroup.GET("", gamificationHandler.GetState)
		gamificationGroup.POST("/action", gamificationHandler.ApplyAction)
		gamificationGroup.GET("/leaderboard", gamificationHandler.Leaderboard)
	}

	progressGroup := router.Group("/quiz-progress")
	progressGroup.Use(middleware.JWTAuth(cfg.JWT.Secret, blacklist))
	{
		progressGroup.GET("", progressHandler.GetProgress)
		progressGroup.POST("", progressHandler.SaveProgress)
		progressGroup.DELETE("/:difficulty", progressHandler.ResetProgress)
	}

	historyGroup := router.Group("/answer-history")
	historyGroup.Use(middleware.JWTAuth(cfg.JWT.Secret, blacklist))
	{
		historyGroup.GET("", progressHandler.AnswerHistory)
		historyGroup.POST("", progressHandler.RecordAnswer)
	}

	addr := ":" + cfg.Server.HTTPPort
	log.Printf("Progression Service starting on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Progression Service stopped")
}
