package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxConcurrent     int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	PrivateKeyPath       string
	RefreshSecret        string
	Issuer               string
	KeyID                string
	AccessTokenTTLMin    int
	RefreshTokenTTLHours int
}

func (j JWT) AccessTTL() time.Duration  { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) RefreshTTL() time.Duration { return time.Duration(j.RefreshTokenTTLHours) * time.Hour }

type Cookie struct {
	Domain string
	Secure bool
}

type CORS struct {
	AllowOrigins []string
}

type Redis struct {
	Enabled       bool   `mapstructure:"enabled"`
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	Prefix        string `mapstructure:"prefix"`
	ProfileTTLSec int    `mapstructure:"profilettlsec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	Cookie Cookie
	CORS   CORS
	DB     DB
	Redis  Redis `mapstructure:"redis"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "auth-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5501)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.maxconcurrent", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.privatekeypath", "certs/private.pem")
	v.SetDefault("jwt.refreshsecret", "")
	v.SetDefault("jwt.keyid", "")
	v.SetDefault("jwt.issuer", "auth-service")
	v.SetDefault("jwt.accesstokenttlmin", 60)
	v.SetDefault("jwt.refreshtokenttlhours", 365*24)
	v.SetDefault("cookie.domain", "localhost")
	v.SetDefault("cookie.secure", false)
	v.SetDefault("cors.alloworigins", []string{"http://localhost:5173"})
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.prefix", "auth:")
	v.SetDefault("redis.profilettlsec", 300)
}

// Load reads the YAML file at path (or $CONFIG_PATH, or the local default);
// APP_* environment variables override it, e.g. APP_JWT_REFRESHSECRET.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("jwt.refreshSecret is required")
	}
	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("jwt.privateKeyPath is required")
	}
	if c.JWT.AccessTokenTTLMin <= 0 || c.JWT.RefreshTokenTTLHours <= 0 {
		return fmt.Errorf("jwt token ttls must be positive")
	}
	return nil
}
