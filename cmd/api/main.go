package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-places-api/internal/config"
	"github.com/go-places-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-places-api/internal/infrastructure/jwt"
	s3infra "github.com/go-places-api/internal/infrastructure/s3"
	"github.com/go-places-api/internal/infrastructure/smtp"
	transporthttp "github.com/go-places-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	if cfg.AdminSecret == "" {
		log.Println("WARN: SECRET_KEY not set; the shared-secret authorization path is disabled")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	tokens, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// S3 store for user photos and place images.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer for OTP delivery.
	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:   dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:    dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.Otps),
		PlaceRepo:  dynamo.NewPlaceRepo(dynamoClient, cfg.DynamoTables.Places),
		RatingRepo: dynamo.NewRatingRepo(dynamoClient, cfg.DynamoTables.Ratings),
		SavedRepo:  dynamo.NewSavedPlaceRepo(dynamoClient, cfg.DynamoTables.SavedPlaces),
		S3Store:    s3Store,
		Mailer:     mailer,
		Tokens:     tokens,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
