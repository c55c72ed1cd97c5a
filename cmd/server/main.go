package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trailfeed/trailfeed-backend/internal/config"
	"github.com/trailfeed/trailfeed-backend/internal/database"
	"github.com/trailfeed/trailfeed-backend/internal/handlers"
	"github.com/trailfeed/trailfeed-backend/internal/middleware"
	"github.com/trailfeed/trailfeed-backend/internal/routes"
	"github.com/trailfeed/trailfeed-backend/internal/services"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Println("⚠️  WARNING: JWT_SECRET is using the default value. Set a real secret in production.")
	}

	// Pick the storage backend
	var stores store.Stores
	switch cfg.StorageBackend {
	case "mongo":
		log.Printf("Connecting to MongoDB...")
		logMaskedURI(cfg.MongoURI)
		if err := database.Connect(cfg.MongoURI); err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer database.Disconnect()

		if err := store.EnsureMongoIndexes(context.Background(), database.DB); err != nil {
			log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
		} else {
			log.Println("✅ MongoDB indexes ensured")
		}
		stores = store.NewMongoStores(database.DB)

	case "postgres":
		log.Printf("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Fatal("Failed to connect to PostgreSQL:", err)
		}
		defer database.DisconnectPostgres()

		if err := store.InitPostgresSchema(database.PostgresDB); err != nil {
			log.Fatal("Failed to initialize PostgreSQL schema:", err)
		}
		log.Println("✅ PostgreSQL schema ready")
		stores = store.NewPostgresStores(database.PostgresDB)

	case "memory":
		log.Println("⚠️  Using in-memory storage; all data is lost on restart")
		stores = store.NewMemoryStores()

	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q (expected mongo, postgres or memory)", cfg.StorageBackend)
	}

	// Redis is optional; caching, rate limiting and cross-instance comment
	// fan-out degrade gracefully without it.
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Caching, rate limiting and multi-instance comment feeds are disabled")
	} else {
		defer database.DisconnectRedis()
	}

	// Cloudinary is optional; uploads 503 without it.
	var cloudinaryService *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("File uploads will not be available")
		} else {
			cloudinaryService = svc
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. File uploads will not be available")
	}

	// Services
	feed := services.NewCommentFeed()
	feed.Start(context.Background())

	userService := services.NewUserService(stores.Users, cfg.JWTSecret)
	experienceService := services.NewExperienceService(stores.Experiences, stores.Users)
	commentService := services.NewCommentService(stores.Comments, stores.Experiences, stores.Users, feed)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)
	r.Use(middleware.RateLimit)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	routes.SetupRoutes(r, routes.Handlers{
		Users:       handlers.NewUserHandler(userService),
		Experiences: handlers.NewExperienceHandler(experienceService),
		Comments:    handlers.NewCommentHandler(commentService),
		Upload:      handlers.NewUploadHandler(cloudinaryService),
		CommentFeed: handlers.NewCommentFeedHandler(feed),
		UserService: userService,
	})

	log.Printf("🚀 Trailfeed backend running on :%s (storage: %s)", cfg.Port, cfg.StorageBackend)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// logMaskedURI logs the MongoDB URI with the password hidden.
func logMaskedURI(mongoURI string) {
	if mongoURI == "" {
		return
	}
	maskedURI := mongoURI
	if strings.Contains(maskedURI, "@") {
		parts := strings.Split(maskedURI, "@")
		if len(parts) > 0 && strings.Contains(parts[0], ":") {
			userPass := strings.Split(parts[0], ":")
			if len(userPass) >= 3 {
				maskedURI = strings.Replace(maskedURI, userPass[2], "***", 1)
			}
		}
	}
	log.Printf("MongoDB URI: %s", maskedURI)
}
