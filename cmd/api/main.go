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

	"github.com/joho/godotenv"
	"github.com/rdzcn/weight-tracker/internal/config"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/dynamo"
	jwtinfra "github.com/rdzcn/weight-tracker/internal/infrastructure/jwt"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/ocr"
	s3infra "github.com/rdzcn/weight-tracker/internal/infrastructure/s3"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/smtp"
	transporthttp "github.com/rdzcn/weight-tracker/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// S3 store for archived scale photos.
	s3Client := s3infra.NewClient(cfg)
	photoStore := s3infra.NewStore(s3Client, cfg.S3BucketName)

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		LinkRepo:    dynamo.NewMagicLinkRepo(dynamoClient, cfg.DynamoTables.MagicLinks),
		WeightRepo:  dynamo.NewWeightRepo(dynamoClient, cfg.DynamoTables.Weights),
		PhotoStore:  photoStore,
		Mailer:      smtp.NewMailer(cfg),
		Extractor:   ocr.NewClient(cfg),
		JWTProvider: jwtinfra.NewProvider(cfg),
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
