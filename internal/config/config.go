package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	// JWTSecret signs access tokens (HS256). AdminSecret is the shared
	// secret that authorizes privileged actions for non-admin callers.
	JWTSecret   string
	JWTExpiry   time.Duration
	AdminSecret string

	OTPExpiry time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users       string
	Otps        string
	Places      string
	Ratings     string
	SavedPlaces string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:       getEnv("DYNAMO_TABLE_USERS", "users"),
			Otps:        getEnv("DYNAMO_TABLE_OTPS", "otp_verifications"),
			Places:      getEnv("DYNAMO_TABLE_PLACES", "places"),
			Ratings:     getEnv("DYNAMO_TABLE_RATINGS", "ratings"),
			SavedPlaces: getEnv("DYNAMO_TABLE_SAVED_PLACES", "saved_places"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "places-api-media"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTExpiry:   time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 30)) * time.Minute,
		AdminSecret: getEnv("SECRET_KEY", ""),

		OTPExpiry: time.Duration(getEnvInt("OTP_EXPIRY_MINUTES", 5)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
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
