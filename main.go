package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sanchitpandey/visitpass-api/config"
	"github.com/sanchitpandey/visitpass-api/handlers"
	"github.com/sanchitpandey/visitpass-api/identity"
	"github.com/sanchitpandey/visitpass-api/routes"
	"github.com/sanchitpandey/visitpass-api/storage"
	"github.com/sanchitpandey/visitpass-api/store"
	"github.com/sanchitpandey/visitpass-api/utils"
)

func connectToDatabase(databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to the database!")
	return pool, nil
}

func buildVerifier(cfg config.Config) identity.Verifier {
	if cfg.FirebaseServiceAccount == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT not set, identity verification is disabled")
		return nil
	}
	verifier, err := identity.NewFirebaseVerifier(context.Background(), []byte(cfg.FirebaseServiceAccount))
	if err != nil {
		log.Fatalf("Unable to initialize identity verifier: %v\n", err)
	}
	log.Println("Identity verifier initialized successfully!")
	return verifier
}

func buildPhotoStore(cfg config.Config) (storage.PhotoStore, string) {
	if cfg.GCSBucket != "" {
		photos, err := storage.NewGCSStore(context.Background(), cfg.GCSBucket, []byte(cfg.FirebaseServiceAccount))
		if err != nil {
			log.Fatalf("Unable to initialize bucket storage: %v\n", err)
		}
		log.Printf("Selfie storage: bucket %s", cfg.GCSBucket)
		return photos, ""
	}

	photos, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Unable to initialize local storage: %v\n", err)
	}
	log.Printf("Selfie storage: local directory %s", cfg.UploadDir)
	return photos, cfg.UploadDir
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using default environment variables")
	}
	cfg := config.FromEnv()

	// Database connection
	pool, err := connectToDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	st := store.NewPostgresStore(pool)
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Unable to create schema: %v\n", err)
	}

	verifier := buildVerifier(cfg)
	photos, uploadDir := buildPhotoStore(cfg)

	var qr utils.QRGenerator = utils.IdentityQRGenerator{}
	if cfg.QRMode == "image" {
		qr = utils.ImageQRGenerator{}
	}
	aadhaar := utils.AadhaarVerifier{Delay: cfg.AadhaarVerifyDelay}

	// Create handlers
	authHandler := handlers.NewAuthHandler(st, cfg.JWTSecret, cfg.JWTExpire, verifier)
	visitorHandler := handlers.NewVisitorHandler(st, cfg.JWTSecret, cfg.JWTExpire, verifier, aadhaar, qr, photos)
	accessHandler := handlers.NewAccessHandler(st)
	reportHandler := handlers.NewReportHandler(st)

	// Setup Gin
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	routes.Setup(router, routes.Deps{
		Secret:    cfg.JWTSecret,
		Store:     st,
		Auth:      authHandler,
		Visitors:  visitorHandler,
		Access:    accessHandler,
		Reports:   reportHandler,
		UploadDir: uploadDir,
	})

	// Health check route
	router.GET("/api/test-db", func(c *gin.Context) {
		if err := pool.Ping(context.Background()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "Database connection OK"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	log.Printf("Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}
