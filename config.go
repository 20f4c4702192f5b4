package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
)

// Config holds all configuration for the admin service.
type Config struct {
	Port   string
	AppEnv string

	JWTSecret string
	TokenTTL  time.Duration

	OrdersPageSize     int
	StoreDriver        string
	StoreTimeout       time.Duration
	StoreRetries       int
	ResolveConcurrency int
	DDBTablePrefix     string
	MongoURL           string
	MongoDBName        string

	AWSRegion           string
	AWSEndpoint         string
	S3Bucket            string
	S3Endpoint          string
	CloudFrontDomain    string
	OrderEventsTopicARN string
	EmailQueueURL       string
	CloudWatchEnabled   bool

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RedisURL       string
	CookieSecure   bool
	AllowedOrigins []string
}

// Store drivers.
const (
	DriverDynamoDB = "dynamodb"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// LoadConfig reads configuration from an optional .env file and the
// environment, with optional Secrets Manager override.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		AppEnv:              getEnv("APP_ENV", "development"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", DriverDynamoDB)),
		DDBTablePrefix:      os.Getenv("DDB_TABLE_PREFIX"),
		MongoURL:            os.Getenv("MONGO_DB_URL"),
		MongoDBName:         getEnv("MONGO_DB_NAME", "lezzetli"),
		AWSRegion:           getEnv("AWS_REGION", "eu-central-1"),
		AWSEndpoint:         os.Getenv("AWS_ENDPOINT"),
		S3Bucket:            os.Getenv("AWS_S3_BUCKET"),
		S3Endpoint:          os.Getenv("AWS_S3_ENDPOINT"),
		CloudFrontDomain:    os.Getenv("AWS_CLOUDFRONT_DOMAIN"),
		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		EmailQueueURL:       os.Getenv("EMAIL_QUEUE_URL"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		SMTPFrom:            os.Getenv("SMTP_FROM"),
		RedisURL:            os.Getenv("REDIS_URL"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CookieSecure:        os.Getenv("COOKIE_SECURE") == "true",
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.OrdersPageSize, err = getInt("ORDERS_PAGE_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.StoreRetries, err = getInt("STORE_RETRIES", 1); err != nil {
		return nil, err
	}
	if cfg.ResolveConcurrency, err = getInt("RESOLVE_CONCURRENCY", 16); err != nil {
		return nil, err
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	// Override secrets from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		cfg.loadSecrets(context.Background())
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	switch cfg.StoreDriver {
	case DriverDynamoDB, DriverMemory:
	case DriverMongo:
		if cfg.MongoURL == "" {
			return nil, fmt.Errorf("MONGO_DB_URL not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.OrdersPageSize < 1 || cfg.ResolveConcurrency < 1 || cfg.StoreRetries < 0 {
		return nil, fmt.Errorf("ORDERS_PAGE_SIZE and RESOLVE_CONCURRENCY must be positive, STORE_RETRIES non-negative")
	}
	return cfg, nil
}

func (cfg *Config) loadSecrets(ctx context.Context) {
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx, aws_pkg.Options{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint})
	if err != nil {
		return
	}
	sm := aws_pkg.NewSecretsClient(awsCfg)

	_ = sm.Override(ctx, "admin/JWT_SECRET", &cfg.JWTSecret)

	if smtpJSON, err := sm.GetSecret(ctx, "admin/SMTP_CREDENTIALS"); err == nil && smtpJSON != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(smtpJSON), &m); err == nil {
			if v, ok := m["SMTP_USER"]; ok && v != "" {
				cfg.SMTPUser = v
			}
			if v, ok := m["SMTP_PASS"]; ok && v != "" {
				cfg.SMTPPass = v
			}
		}
	}
}

// SMTPConfigured reports whether direct mail delivery is possible.
func (cfg *Config) SMTPConfigured() bool {
	return cfg.SMTPHost != "" && cfg.SMTPUser != "" && cfg.SMTPPass != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
