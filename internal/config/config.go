package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig selects the durable backend behind the portal state keys.
type StorageConfig struct {
	Driver    string
	Namespace string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type SecurityConfig struct {
	SessionSecret     string
	SessionTTL        time.Duration
	HashCredentials   bool
	AdminPrefix       string
	AdminProvisioning bool
	SignatureSecret   string
}

type PortalConfig struct {
	EmailDomain    string
	DefaultTheme   string
	MaxAvatarBytes int64
}

type JobsConfig struct {
	Enabled    bool
	BackupSpec string
	DigestSpec string
}

type QueueConfig struct {
	ClaimInterval time.Duration
	MaxSkew       time.Duration
	NonceTTL      time.Duration
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Storage          StorageConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	ObjectStore      ObjectStoreConfig
	Security         SecurityConfig
	Portal           PortalConfig
	Jobs             JobsConfig
	Queues           QueueConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

// Load reads portal.yaml (if present) and UNSRITALK_* environment overrides.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("portal")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	return load(v)
}

// LoadFile reads an explicit config file. Environment overrides still apply.
func LoadFile(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	return load(v)
}

func load(v *viper.Viper) (*AppConfig, error) {
	v.SetEnvPrefix("UNSRITALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Storage.Driver {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres storage requires postgres.dsn")
	}
	switch c.Portal.DefaultTheme {
	case "light", "navy", "dark":
	default:
		return fmt.Errorf("unknown default theme %q", c.Portal.DefaultTheme)
	}
	if c.Portal.MaxAvatarBytes <= 0 {
		return fmt.Errorf("portal.maxavatarbytes must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("allowcorsorigins", []string{})

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.namespace", "unsri-talk-")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "portal:tasks")
	v.SetDefault("redis.group", "portal-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("objectstore.endpoint", "")
	v.SetDefault("objectstore.accesskey", "")
	v.SetDefault("objectstore.secretkey", "")
	v.SetDefault("objectstore.bucket", "unsri-talk-backups")
	v.SetDefault("objectstore.usessl", false)
	v.SetDefault("objectstore.region", "us-east-1")

	v.SetDefault("security.sessionsecret", "change-me")
	v.SetDefault("security.sessionttl", "720h") // 30 days
	v.SetDefault("security.hashcredentials", false)
	v.SetDefault("security.adminprefix", "ADMSRV_")
	v.SetDefault("security.adminprovisioning", true)
	v.SetDefault("security.signaturesecret", "change-me")

	v.SetDefault("portal.emaildomain", "unsri.ac.id")
	v.SetDefault("portal.defaulttheme", "navy")
	v.SetDefault("portal.maxavatarbytes", 2<<20)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.backupspec", "0 0 0 * * *")
	v.SetDefault("jobs.digestspec", "0 0 */1 * * *")

	v.SetDefault("queues.claiminterval", "10s")
	v.SetDefault("queues.maxskew", "15m")
	v.SetDefault("queues.noncettl", "24h")

	v.SetDefault("logging.level", "")
}
