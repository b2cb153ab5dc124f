package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		Debug    bool
		TestMode bool

		AppName                   string
		SecretKey                 string
		FrontendBaseURL           string
		PasswordResetTimeoutDelta time.Duration

		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Upstream UpstreamConfig
		Cache    CacheConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// UpstreamConfig points at the platform API that masters College records.
	UpstreamConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	CacheConfig struct {
		Dir string
	}
)

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) DefaultFromEmailAddr() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Upskillway CRM")
	v.SetDefault("secretKey", "x7h)2dq&u0hxw(h!x)#*c2(#yg4h^$cegm2emy-crm-dev")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debugHost", "0.0.0.0:9000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "upskillway")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "crm")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("upstream.baseURL", "http://localhost:9100")
	v.SetDefault("upstream.timeout", 10*time.Second)

	v.SetDefault("cache.dir", filepath.Join(os.TempDir(), "upskillway-cache"))

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("env", env)
	v.SetDefault("testMode", env == "TEST")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		log.Fatalf("config.viper.Unmarshal: %v", err)
	}
	conf.Debug = conf.Env == "DEV" && conf.Debug
	return &conf
}
