package config

import (
	"fmt"
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
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketProfile string
	BucketCompany string
	BucketCV      string
	UseSSL        bool
	Region        string
	PublicBaseURL string
}

type SecurityConfig struct {
	UserAccessSecret   string
	UserRefreshSecret  string
	AdminAccessSecret  string
	AdminRefreshSecret string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	OTPTTL             time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Stream   string
	Group    string
}

type RealtimeConfig struct {
	SendBuffer     int
	IdleTimeout    time.Duration
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

type PaginationConfig struct {
	DefaultPage int
	DefaultSize int
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Mail             MailConfig
	Realtime         RealtimeConfig
	Pagination       PaginationConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("JOBBOARD")
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

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucketprofile", "jobboard-profiles")
	v.SetDefault("storage.bucketcompany", "jobboard-companies")
	v.SetDefault("storage.bucketcv", "jobboard-cvs")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.accessttl", "1h")
	v.SetDefault("security.refreshttl", "168h") // 7 days
	v.SetDefault("security.otpttl", "10m")

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.stream", "mail:outbound")
	v.SetDefault("mail.group", "mailers")

	v.SetDefault("realtime.sendbuffer", 16)
	v.SetDefault("realtime.idletimeout", "90s")
	v.SetDefault("realtime.pinginterval", "30s")
	v.SetDefault("realtime.writetimeout", "10s")
	v.SetDefault("realtime.maxmessagesize", 8192)

	v.SetDefault("pagination.defaultpage", 1)
	v.SetDefault("pagination.defaultsize", 10)
}
