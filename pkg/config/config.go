package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every NovaPOS environment variable.
	EnvPrefix = "NOVAPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "NOVAPOS_DB_DSN"
	EnvDBHost = "NOVAPOS_DB_HOST"
	EnvDBUser = "NOVAPOS_DB_USER"
	EnvDBName = "NOVAPOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	Tax           TaxConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NOVAPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"NOVAPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NOVAPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOVAPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NOVAPOS_DB_DSN"`
	Driver string `envconfig:"NOVAPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NOVAPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"NOVAPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NOVAPOS_DB_USER"`
	LegacyPassword string `envconfig:"NOVAPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"NOVAPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"NOVAPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NOVAPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOVAPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOVAPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOVAPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"NOVAPOS_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOVAPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NOVAPOS_REDIS_ADDR"`
	Password     string        `envconfig:"NOVAPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOVAPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOVAPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOVAPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOVAPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOVAPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOVAPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"NOVAPOS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"NOVAPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"NOVAPOS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"NOVAPOS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NOVAPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NOVAPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NOVAPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NOVAPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NOVAPOS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"NOVAPOS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"NOVAPOS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"NOVAPOS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"NOVAPOS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// TaxConfig carries the platform-wide fallback when no override or header
// rate applies.
type TaxConfig struct {
	DefaultRateBps int `envconfig:"NOVAPOS_TAX_DEFAULT_RATE_BPS" default:"0"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"NOVAPOS_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"NOVAPOS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic   string `envconfig:"NOVAPOS_PUBSUB_ORDERS_TOPIC" default:"novapos-order-events"`
	PaymentsTopic string `envconfig:"NOVAPOS_PUBSUB_PAYMENTS_TOPIC" default:"novapos-payment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"NOVAPOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"NOVAPOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"NOVAPOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
