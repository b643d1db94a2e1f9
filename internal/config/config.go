package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Env             string        `mapstructure:"env"`
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	BodyLimitBytes  int           `mapstructure:"body_limit_bytes"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type MongoConfig struct {
	URI       string        `mapstructure:"uri"`
	Database  string        `mapstructure:"database"`
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	Prefix      string        `mapstructure:"prefix"`
	PresenceTTL time.Duration `mapstructure:"presence_ttl"`
}

type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	TopicMessageSent string   `mapstructure:"topic_message_sent"`
}

type WSConfig struct {
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	WriteDeadline   time.Duration `mapstructure:"write_deadline"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	EventsPerSecond float64       `mapstructure:"events_per_second"`
	EventBurst      int           `mapstructure:"event_burst"`
}

type S3Config struct {
	Bucket     string        `mapstructure:"bucket"`
	Region     string        `mapstructure:"region"`
	Endpoint   string        `mapstructure:"endpoint"`
	PublicRead bool          `mapstructure:"public_read"`
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

type MediaConfig struct {
	Dir       string   `mapstructure:"dir"`
	URLPrefix string   `mapstructure:"url_prefix"`
	MaxBytes  int64    `mapstructure:"max_bytes"`
	S3        S3Config `mapstructure:"s3"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	WS       WSConfig       `mapstructure:"ws"`
	Media    MediaConfig    `mapstructure:"media"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 4000)
	v.SetDefault("app.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("app.read_timeout", 15*time.Second)
	v.SetDefault("app.write_timeout", 15*time.Second)
	v.SetDefault("app.body_limit_bytes", 60*1024*1024)
	v.SetDefault("app.rate_limit_per_min", 600)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 7*24*time.Hour)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "linkedin_clone")
	v.SetDefault("mongo.op_timeout", 5*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "ws")
	v.SetDefault("redis.presence_ttl", 2*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_message_sent", "chat.message.sent")

	v.SetDefault("ws.ping_interval", 25*time.Second)
	v.SetDefault("ws.pong_wait", 60*time.Second)
	v.SetDefault("ws.write_deadline", 10*time.Second)
	v.SetDefault("ws.max_message_size", 64*1024)
	v.SetDefault("ws.send_buffer", 256)
	v.SetDefault("ws.events_per_second", 20)
	v.SetDefault("ws.event_burst", 40)

	v.SetDefault("media.dir", "uploads")
	v.SetDefault("media.url_prefix", "/uploads")
	v.SetDefault("media.max_bytes", 50*1024*1024)
	v.SetDefault("media.s3.bucket", "")
	v.SetDefault("media.s3.region", "us-east-1")
	v.SetDefault("media.s3.endpoint", "")
	v.SetDefault("media.s3.public_read", true)
	v.SetDefault("media.s3.presign_ttl", 7*24*time.Hour)

	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("metrics.enabled", true)
}

// Load reads .env (when present), then the optional config file at path,
// then environment variables. APP_PORT overrides app.port and so on; the
// legacy names PORT, JWT_SECRET, MONGO_URL and FRONTEND_URL are honored too.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("app.port", "APP_PORT", "PORT")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("mongo.uri", "MONGO_URI", "MONGO_URL")
	_ = v.BindEnv("app.allowed_origins", "APP_ALLOWED_ORIGINS", "FRONTEND_URL")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.App.AllowedOrigins = splitList(c.App.AllowedOrigins)
	c.Kafka.Brokers = splitList(c.Kafka.Brokers)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid app.port: %d", c.App.Port)
	}
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required")
		}
		c.JWT.Secret = "secret"
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	if c.Mongo.URI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.WS.MaxMessageSize <= 0 || c.WS.SendBuffer <= 0 {
		return errors.New("ws.max_message_size and ws.send_buffer must be positive")
	}
	if c.WS.PingInterval >= c.WS.PongWait {
		return fmt.Errorf("ws.ping_interval (%s) must be shorter than ws.pong_wait (%s)", c.WS.PingInterval, c.WS.PongWait)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.App.Port) }

// splitList flattens comma separated entries, which is how list values
// arrive from a single environment variable.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
