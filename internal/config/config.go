package config

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DataDriverSQL    = "sql"
	DataDriverS3     = "s3"
	DataDriverDevOps = "devops"
	DataDriverMemory = "memory"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string // Base URI of the widget, its hostname scopes the cookies
	Port    string

	// Extension identity
	ExtensionPublisher string
	ExtensionID        string // "sprint-goal", "sprint-goal-dev" or "sprint-goal-acc"
	ExtensionSecret    string // Certificate secret used by the host to sign app tokens

	// Extension data backend: "sql", "s3", "devops" or "memory" (development only)
	DataDriver string

	// Database (only used by the sql data driver)
	DBDriver     string
	DBConnection string

	// Host (Azure DevOps organization)
	DevOpsOrgURL     string
	DevOpsExtMgmtURL string // Optional: derived from DevOpsOrgURL when empty
	DevOpsToken      string
	DevOpsTimeout    time.Duration

	// Export
	ExportConcurrency int

	// Observability (optional)
	SentryDSN string

	// Storage (only used by the s3 data driver)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, R2, etc.)
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Sprint Goal"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"),
		Port:    envString("PORT", "8090"),

		// Extension identity
		ExtensionPublisher: envString("EXTENSION_PUBLISHER", "keesschollaart"),
		ExtensionID:        envString("EXTENSION_ID", "sprint-goal"),
		ExtensionSecret:    envString("EXTENSION_SECRET", ""),

		DataDriver: envString("DATA_DRIVER", DataDriverSQL),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/sprintgoal.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Host
		DevOpsOrgURL:     envRequired("DEVOPS_ORG_URL"),
		DevOpsExtMgmtURL: envString("DEVOPS_EXTMGMT_URL", ""),
		DevOpsToken:      envString("DEVOPS_TOKEN", ""),
		DevOpsTimeout:    envDuration("DEVOPS_TIMEOUT", 30*time.Second),

		ExportConcurrency: envInt("EXPORT_CONCURRENCY", 4),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	if cfg.DevOpsExtMgmtURL == "" {
		cfg.DevOpsExtMgmtURL = ExtMgmtURL(cfg.DevOpsOrgURL)
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}
	if cfg.DataDriver == DataDriverS3 {
		validateS3(cfg)
	}

	return cfg
}

// validateProduction ensures the host can authenticate itself against the widget.
// Development skips app token verification for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ExtensionSecret == "" {
		slog.Error("production deployment requires EXTENSION_SECRET",
			"hint", "set APP_ENV=development to run without app token verification")
		os.Exit(1)
	}
}

func validateS3(cfg *Config) {
	if cfg.S3Bucket == "" || cfg.S3Region == "" {
		slog.Error("DATA_DRIVER=s3 requires S3_BUCKET and S3_REGION")
		os.Exit(1)
	}
}

// ExtMgmtURL derives the extension management endpoint of an organization.
// https://dev.azure.com/org becomes https://extmgmt.dev.azure.com/org, and
// https://org.visualstudio.com becomes https://org.extmgmt.visualstudio.com.
func ExtMgmtURL(orgURL string) string {
	u, err := url.Parse(strings.TrimSuffix(orgURL, "/"))
	if err != nil || u.Host == "" {
		return orgURL
	}

	switch {
	case u.Host == "dev.azure.com":
		u.Host = "extmgmt.dev.azure.com"
	case strings.HasSuffix(u.Host, ".visualstudio.com"):
		org := strings.TrimSuffix(u.Host, ".visualstudio.com")
		u.Host = org + ".extmgmt.visualstudio.com"
	}
	return u.String()
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CookieDomain is the hostname of the widget's base URI.
func (c *Config) CookieDomain() string {
	u, err := url.Parse(c.AppURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and tokens are excluded, safe to expose in ctx and templates.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:            c.AppName,
		AppEnv:             c.AppEnv,
		AppURL:             c.AppURL,
		Port:               c.Port,
		ExtensionPublisher: c.ExtensionPublisher,
		ExtensionID:        c.ExtensionID,
		DataDriver:         c.DataDriver,
		DevOpsOrgURL:       c.DevOpsOrgURL,
	}
}
