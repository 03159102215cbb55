package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/zamyatin-zkex/quoter/internal/quote"
	"go.uber.org/zap"
)

const EnvLocal = "local"

type Config struct {
	App   App   `mapstructure:"app"`
	Web   Web   `mapstructure:"web"`
	Feed  Feed  `mapstructure:"feed"`
	Kafka Kafka `mapstructure:"kafka"`
	Redis Redis `mapstructure:"redis"`
	Log   Log   `mapstructure:"log"`
}

type App struct {
	Env string `mapstructure:"env"`
}

type Web struct {
	Addr string `mapstructure:"addr"`
}

type Feed struct {
	// Symbols to run, empty runs the whole catalog.
	Symbols []string `mapstructure:"symbols"`
	// Profile overrides the per-kind walk profile when set.
	Profile   string        `mapstructure:"profile"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	Group   string   `mapstructure:"group"`
}

type Redis struct {
	Addr string        `mapstructure:"addr"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Load reads path (or ./.env when empty) into the environment, then builds
// the config from defaults overridden by env vars: web.addr <- WEB_ADDR.
func Load(path string) (*Config, error) {
	if err := loadDotenv(path); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("app.env", EnvLocal)
	v.SetDefault("web.addr", "127.0.0.1:4242")
	v.SetDefault("feed.symbols", []string{})
	v.SetDefault("feed.profile", "")
	v.SetDefault("feed.heartbeat", 10*time.Second)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "quotes")
	v.SetDefault("kafka.group", "quoter")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("log.level", "info")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "app.env", "web.addr")
	bindEnv(v, "feed.symbols", "feed.profile", "feed.heartbeat")
	bindEnv(v, "kafka.brokers", "kafka.topic", "kafka.group")
	bindEnv(v, "redis.addr", "redis.ttl", "log.level")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Feed.Symbols = normalize(cfg.Feed.Symbols)
	cfg.Kafka.Brokers = normalize(cfg.Kafka.Brokers)
	for i, s := range cfg.Feed.Symbols {
		cfg.Feed.Symbols[i] = strings.ToUpper(s)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotenv(path string) error {
	if path == "" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		// BindEnv only fails without a key
		_ = v.BindEnv(key)
	}
}

// normalize drops blanks, env lists arrive as "a, b,".
func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Web.Addr == "" {
		return errors.New("web.addr cannot be empty")
	}
	if c.Feed.Profile != "" {
		if _, ok := quote.ProfileByName(c.Feed.Profile); !ok {
			return fmt.Errorf("unknown feed.profile %q", c.Feed.Profile)
		}
	}
	if c.Feed.Heartbeat <= 0 {
		return errors.New("feed.heartbeat must be positive")
	}
	if c.Kafka.Enabled() && (c.Kafka.Topic == "" || c.Kafka.Group == "") {
		return errors.New("kafka.topic and kafka.group are required with brokers")
	}
	if c.Redis.Enabled() && c.Redis.TTL <= 0 {
		return errors.New("redis.ttl must be positive")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

func (k Kafka) SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = "quoter"
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true

	return cfg
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// NewLogger builds a development logger for the local env and a JSON
// production logger otherwise.
func NewLogger(c *Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.App.Env == EnvLocal {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level

	return zc.Build()
}
