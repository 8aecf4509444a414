package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/naratama/library-service/library/internal/mailer"
	"github.com/naratama/library-service/library/internal/payment"
	"github.com/naratama/library-service/library/internal/repository"
	"github.com/naratama/library-service/library/internal/service"
	"github.com/naratama/library-service/library/internal/session"
	"github.com/naratama/library-service/pkg/kafka"
	"github.com/naratama/library-service/pkg/logger"
	"github.com/naratama/library-service/pkg/openid"
	"github.com/naratama/library-service/pkg/postgres"
)

const EnvProduction = "production"

type HTTPServer struct {
	Host         string        `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	RPS          float64       `envconfig:"HTTP_RPS" default:"100"`
	BodyLimit    string        `envconfig:"HTTP_BODY_LIMIT" default:"2M"`
}

type Config struct {
	AppEnv      string `envconfig:"APP_ENV"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	Server      HTTPServer
	Database    postgres.DB
	Tx          repository.TxConfig
	Session     session.Config
	Kafka       kafka.Config
	Limits      service.Limits
	Payment     payment.Config
	Mailer      mailer.Config
	Google      openid.Config
	Log         logger.Log
}

func (c Config) Production() bool {
	return c.AppEnv == EnvProduction
}

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = d
	}
}

func WithEnv(env string) Option {
	return func(c *Config) {
		c.AppEnv = env
	}
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment once. Options set values that
// the environment may still override.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		if config.AppEnv == "" {
			config.AppEnv = "development"
		}
		if config.Server.WriteTimeout <= 0 {
			config.Server.WriteTimeout = 30 * time.Second
		}
		cfg = &config
		if !config.Production() {
			printConfig(config)
		}
	})
	return cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
