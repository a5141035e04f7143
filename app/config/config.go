package config

import (
	"os"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Server  ServerConfig
	DB      PostgresConfig
	Stripe  StripeConfig
	Auth    AuthConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Name     string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	FrontendURL   string
}

// AuthConfig points the JWT verifier at the Supabase project's JWKS and
// holds the securecookie keys for the browser session bridge.
type AuthConfig struct {
	Issuer         string
	Audience       string
	JWKSURL        string
	SessionHashKey string
	SessionBlock   string
}

// StorageConfig targets the S3-compatible object store that holds the
// headshots and intro-videos buckets.
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	HeadshotBucket  string
	VideoBucket     string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getenvDefault("PORT", "8080"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     getenvDefault("POSTGRES_PORT", "5432"),
			Name:     getenvDefault("POSTGRES_DB", "postgres"),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			FrontendURL:   getenvDefault("SITE_URL", "http://localhost:3000"),
		},
		Auth: AuthConfig{
			Issuer:         os.Getenv("SUPABASE_JWT_ISSUER"),
			Audience:       getenvDefault("SUPABASE_JWT_AUDIENCE", "authenticated"),
			JWKSURL:        os.Getenv("SUPABASE_JWKS_URL"),
			SessionHashKey: os.Getenv("SESSION_HASH_KEY"),
			SessionBlock:   os.Getenv("SESSION_BLOCK_KEY"),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			Region:          getenvDefault("STORAGE_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_KEY"),
			PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_URL"),
			HeadshotBucket:  getenvDefault("STORAGE_HEADSHOT_BUCKET", "headshots"),
			VideoBucket:     getenvDefault("STORAGE_VIDEO_BUCKET", "intro-videos"),
		},
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
