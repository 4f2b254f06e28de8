package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	SigningSecret       string
	JWTExpiryDays       int
	MagicLinkTTLMinutes int

	// FrontendOrigin is used both for building magic-link URLs and as the
	// CORS allow-list entry.
	FrontendOrigin string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	OCREndpoint string
	OCRAPIKey   string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users      string
	MagicLinks string
	Weights    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "8000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		SigningSecret:       getEnv("SIGNING_SECRET", "dev-signing-secret-change-me"),
		JWTExpiryDays:       getEnvInt("JWT_EXPIRY_DAYS", 7),
		MagicLinkTTLMinutes: getEnvInt("MAGIC_LINK_TTL_MINUTES", 15),

		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:      getEnv("DYNAMO_TABLE_USERS", "users"),
			MagicLinks: getEnv("DYNAMO_TABLE_MAGIC_LINKS", "magic_links"),
			Weights:    getEnv("DYNAMO_TABLE_WEIGHTS", "weights"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "weight-tracker-photos"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		OCREndpoint: getEnv("OCR_ENDPOINT", ""),
		OCRAPIKey:   getEnv("OCR_API_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
