package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/inkpub/micropub/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Store       StoreConfig
	Publication PublicationConfig
	Media       MediaConfig
	LogLevel    string
	LogFormat   string // text or json
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig is optional; with an empty URI posts and history are kept
// in memory and on disk.
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

// Addr is host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type AuthConfig struct {
	JWTSecret     string
	OIDCIssuer    string
	OIDCClientID  string
	AllowInsecure bool
	TokenTTL      time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	RPS      float64
	Burst    int
	UseRedis bool
	Window   time.Duration
}

type StoreConfig struct {
	Backend string // memory, github or minio
	GitHub  GitHubConfig
	MinIO   MinIOConfig
}

type GitHubConfig struct {
	Token  string
	User   string
	Repo   string
	Branch string
	APIURL string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	Prefix    string
}

type PublicationConfig struct {
	ConfigFile  string
	Me          string
	HistoryFile string
}

type MediaConfig struct {
	MaxUpload string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "micropub")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("TOKEN_TTL_MINUTES", 60*24*90)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("STORE_BACKEND", "memory")
	viper.SetDefault("GITHUB_API_URL", "https://api.github.com")
	viper.SetDefault("MINIO_BUCKET", "micropub")
	viper.SetDefault("MINIO_REGION", "us-east-1")
	viper.SetDefault("MEDIA_MAX_UPLOAD", "10MB")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	port := viper.GetString("SERVER_PORT")
	cfg := &Config{
		Server: ServerConfig{
			Port:         port,
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			URL:          viper.GetString("SERVER_URL"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret:     viper.GetString("JWT_SECRET"),
			OIDCIssuer:    viper.GetString("OIDC_ISSUER"),
			OIDCClientID:  viper.GetString("OIDC_CLIENT_ID"),
			AllowInsecure: viper.GetBool("ALLOW_INSECURE_TOKEN"),
			TokenTTL:      time.Duration(viper.GetInt("TOKEN_TTL_MINUTES")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:  viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis: viper.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Store: StoreConfig{
			Backend: strings.ToLower(viper.GetString("STORE_BACKEND")),
			GitHub: GitHubConfig{
				Token:  viper.GetString("GITHUB_TOKEN"),
				User:   viper.GetString("GITHUB_USER"),
				Repo:   viper.GetString("GITHUB_REPO"),
				Branch: viper.GetString("GITHUB_BRANCH"),
				APIURL: viper.GetString("GITHUB_API_URL"),
			},
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
				Region:    viper.GetString("MINIO_REGION"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				Prefix:    viper.GetString("MINIO_PREFIX"),
			},
		},
		Publication: PublicationConfig{
			ConfigFile:  viper.GetString("PUBLICATION_CONFIG"),
			Me:          viper.GetString("PUBLICATION_ME"),
			HistoryFile: viper.GetString("HISTORY_FILE"),
		},
		Media: MediaConfig{
			MaxUpload: viper.GetString("MEDIA_MAX_UPLOAD"),
		},
		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: strings.ToLower(viper.GetString("LOG_FORMAT")),
	}

	if cfg.Server.URL == "" {
		cfg.Server.URL = "http://localhost:" + port
	}
	if cfg.Publication.Me == "" {
		cfg.Publication.Me = cfg.Server.URL
	}

	switch cfg.Store.Backend {
	case "memory", "github", "minio":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	// Basic validation
	if cfg.Auth.JWTSecret == "" && cfg.Auth.OIDCIssuer == "" && !cfg.Auth.AllowInsecure {
		logger.Warnf("neither JWT_SECRET nor OIDC_ISSUER is set; every request will be rejected")
	}

	return cfg, nil
}
