package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string
	LogLevel      string

	// Ledger
	AuditLogDir              string
	EntryNumberPrefix        string
	FiscalYearStartMonth     time.Month
	ClosingEquityAccountCode string

	// Reconciliation
	ReconDateToleranceDays int
	ReconAmountTolerance   decimal.Decimal

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string

	// Caches
	AccountCacheTTL time.Duration
	RedisURL        string
	ChainReportTTL  time.Duration

	// Audit log archive (S3 compatible)
	ArchiveS3Endpoint  string `mapstructure:"ARCHIVE_S3_ENDPOINT"`
	ArchiveS3Region    string `mapstructure:"ARCHIVE_S3_REGION"`
	ArchiveS3Bucket    string `mapstructure:"ARCHIVE_S3_BUCKET"`
	ArchiveS3AccessKey string `mapstructure:"ARCHIVE_S3_ACCESS_KEY"`
	ArchiveS3SecretKey string `mapstructure:"ARCHIVE_S3_SECRET_KEY"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "temple-ledger")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("AUDIT_LOG_DIR", "./audit")
	viper.SetDefault("ENTRY_NUMBER_PREFIX", "JE")
	viper.SetDefault("FISCAL_YEAR_START_MONTH", 4)
	viper.SetDefault("CLOSING_EQUITY_ACCOUNT_CODE", "3000")
	viper.SetDefault("RECON_DATE_TOLERANCE_DAYS", 3)
	viper.SetDefault("RECON_AMOUNT_TOLERANCE", "0.00")
	viper.SetDefault("RATE_LIMIT", "200-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("ACCOUNT_CACHE_TTL", "5m")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CHAIN_REPORT_TTL", "10m")
	viper.SetDefault("ARCHIVE_S3_REGION", "ap-south-1")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")

	cfg.AuditLogDir = viper.GetString("AUDIT_LOG_DIR")
	cfg.EntryNumberPrefix = viper.GetString("ENTRY_NUMBER_PREFIX")
	cfg.ClosingEquityAccountCode = viper.GetString("CLOSING_EQUITY_ACCOUNT_CODE")

	month := viper.GetInt("FISCAL_YEAR_START_MONTH")
	if month < 1 || month > 12 {
		log.Printf("Warning: Invalid value for FISCAL_YEAR_START_MONTH (%d). Defaulting to April.\n", month)
		month = 4
	}
	cfg.FiscalYearStartMonth = time.Month(month)

	cfg.ReconDateToleranceDays = viper.GetInt("RECON_DATE_TOLERANCE_DAYS")
	if cfg.ReconDateToleranceDays < 0 {
		log.Printf("Warning: Invalid value for RECON_DATE_TOLERANCE_DAYS (%d). Defaulting to 3.\n", cfg.ReconDateToleranceDays)
		cfg.ReconDateToleranceDays = 3
	}
	tolerance, err := decimal.NewFromString(viper.GetString("RECON_AMOUNT_TOLERANCE"))
	if err != nil || tolerance.IsNegative() {
		log.Printf("Warning: Invalid value for RECON_AMOUNT_TOLERANCE ('%s'). Defaulting to 0.00.\n", viper.GetString("RECON_AMOUNT_TOLERANCE"))
		tolerance = decimal.Zero
	}
	cfg.ReconAmountTolerance = tolerance

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.AccountCacheTTL = durationOrDefault("ACCOUNT_CACHE_TTL", 5*time.Minute)
	cfg.ChainReportTTL = durationOrDefault("CHAIN_REPORT_TTL", 10*time.Minute)
	cfg.RedisURL = viper.GetString("REDIS_URL")

	cfg.ArchiveS3Endpoint = viper.GetString("ARCHIVE_S3_ENDPOINT")
	cfg.ArchiveS3Region = viper.GetString("ARCHIVE_S3_REGION")
	cfg.ArchiveS3Bucket = viper.GetString("ARCHIVE_S3_BUCKET")
	cfg.ArchiveS3AccessKey = viper.GetString("ARCHIVE_S3_ACCESS_KEY")
	cfg.ArchiveS3SecretKey = viper.GetString("ARCHIVE_S3_SECRET_KEY")

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
