package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "BIZDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Auth          AuthConfig
	AuthRateLimit AuthRateLimitConfig
	Gemini        GeminiConfig
	RAG           RAGConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"BIZDESK_APP_ENV" required:"true"`
	Port         string   `envconfig:"BIZDESK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"BIZDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"BIZDESK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"BIZDESK_CORS_ORIGINS" default:"http://localhost:8501,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

type DBConfig struct {
	// Driver selects the relational engine. BizDesk is SQLite-first; the
	// postgres path exists for deployments that outgrow a single file.
	Driver string `envconfig:"BIZDESK_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"BIZDESK_DB_DSN" default:"bizdesk.db"`

	MaxOpenConns    int           `envconfig:"BIZDESK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BIZDESK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BIZDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BIZDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q (expected %s or %s)", db.Driver, DBDriverSQLite, DBDriverPostgres)
	}
	if strings.TrimSpace(db.DSN) == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

// IsSQLite reports whether the SQLite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"BIZDESK_REDIS_URL" required:"true"`
	Password     string        `envconfig:"BIZDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"BIZDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BIZDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BIZDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BIZDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BIZDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BIZDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BIZDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BIZDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BIZDESK_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"BIZDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AuthConfig carries the access secrets users trade for a session.
type AuthConfig struct {
	AdminToken string `envconfig:"BIZDESK_ADMIN_TOKEN" required:"true"`
	// ShopTokens is comma-separated; a business can hand out several.
	ShopTokens string `envconfig:"BIZDESK_SHOP_TOKENS" required:"true"`
}

// ShopTokenList splits and trims the configured shop owner tokens.
func (a AuthConfig) ShopTokenList() []string {
	parts := strings.Split(a.ShopTokens, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BIZDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginTokenLimit int           `envconfig:"BIZDESK_AUTH_RATE_LIMIT_LOGIN_TOKEN_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"BIZDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type GeminiConfig struct {
	APIKey         string `envconfig:"BIZDESK_GEMINI_API_KEY"`
	Model          string `envconfig:"BIZDESK_GEMINI_MODEL" default:"gemini-2.5-flash"`
	EmbeddingModel string `envconfig:"BIZDESK_GEMINI_EMBEDDING_MODEL" default:"text-embedding-004"`
	EmbeddingDim   int    `envconfig:"BIZDESK_GEMINI_EMBEDDING_DIM" default:"768"`
}

type RAGConfig struct {
	IndexDir     string `envconfig:"BIZDESK_RAG_INDEX_DIR" default:"data/index"`
	ChunkSize    int    `envconfig:"BIZDESK_RAG_CHUNK_SIZE" default:"1000"`
	ChunkOverlap int    `envconfig:"BIZDESK_RAG_CHUNK_OVERLAP" default:"100"`
	TopK         int    `envconfig:"BIZDESK_RAG_TOP_K" default:"3"`
	MaxUploadMB  int    `envconfig:"BIZDESK_RAG_MAX_UPLOAD_MB" default:"25"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BIZDESK_AUTO_MIGRATE" default:"false"`
}
