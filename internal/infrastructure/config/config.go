package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Saga          SagaConfig          `mapstructure:"saga"`
	Worker        WorkerConfig        `mapstructure:"worker"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SSLMode         string        `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	DB                int           `mapstructure:"db"`
	Password          string        `mapstructure:"password"`
	ConnectRetries    int           `mapstructure:"connect_retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	GroupID      string        `mapstructure:"group_id"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TopicsConfig names every topic of the saga. Topic names are configuration,
// not protocol; the protocol only needs a stable participant→topic mapping.
type TopicsConfig struct {
	Start                    string `mapstructure:"start"`
	Orchestrator             string `mapstructure:"orchestrator"`
	NotifyEnding             string `mapstructure:"notify_ending"`
	DeadLetter               string `mapstructure:"dead_letter"`
	ProductValidationSuccess string `mapstructure:"product_validation_success"`
	ProductValidationFail    string `mapstructure:"product_validation_fail"`
	PaymentSuccess           string `mapstructure:"payment_success"`
	PaymentFail              string `mapstructure:"payment_fail"`
	InventorySuccess         string `mapstructure:"inventory_success"`
	InventoryFail            string `mapstructure:"inventory_fail"`
}

// SourcesConfig names the source identities written into envelopes. They are
// explicit configuration so tests and deployments can rename participants
// without touching the core.
type SourcesConfig struct {
	Order             string `mapstructure:"order"`
	ProductValidation string `mapstructure:"product_validation"`
	Payment           string `mapstructure:"payment"`
	Inventory         string `mapstructure:"inventory"`
}

type SagaConfig struct {
	MinPaymentAmount string        `mapstructure:"min_payment_amount"`
	Topics           TopicsConfig  `mapstructure:"topics"`
	Sources          SourcesConfig `mapstructure:"sources"`
}

type WorkerConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type ObservabilityConfig struct {
	LogLevel      string `mapstructure:"log_level"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SAGA")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/order-saga")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("kafka.brokers is required"))
	}
	if c.Worker.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("worker.lock_ttl must be positive"))
	}
	if _, err := saga.ParseAmount(c.Saga.MinPaymentAmount); err != nil {
		errs = append(errs, fmt.Errorf("saga.min_payment_amount: %w", err))
	}

	topics := []struct{ name, value string }{
		{"saga.topics.start", c.Saga.Topics.Start},
		{"saga.topics.orchestrator", c.Saga.Topics.Orchestrator},
		{"saga.topics.notify_ending", c.Saga.Topics.NotifyEnding},
		{"saga.topics.dead_letter", c.Saga.Topics.DeadLetter},
		{"saga.topics.product_validation_success", c.Saga.Topics.ProductValidationSuccess},
		{"saga.topics.product_validation_fail", c.Saga.Topics.ProductValidationFail},
		{"saga.topics.payment_success", c.Saga.Topics.PaymentSuccess},
		{"saga.topics.payment_fail", c.Saga.Topics.PaymentFail},
		{"saga.topics.inventory_success", c.Saga.Topics.InventorySuccess},
		{"saga.topics.inventory_fail", c.Saga.Topics.InventoryFail},
	}
	for _, t := range topics {
		if t.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", t.name))
		}
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "saga")
	v.SetDefault("database.database", "saga")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.ssl_mode", "disable")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.connect_retries", 5)
	v.SetDefault("redis.connect_retry_delay", "1s")

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "order-saga")
	v.SetDefault("kafka.write_timeout", "10s")

	// Saga defaults
	v.SetDefault("saga.min_payment_amount", "0.01")
	v.SetDefault("saga.topics.start", "start-saga")
	v.SetDefault("saga.topics.orchestrator", "orchestrator")
	v.SetDefault("saga.topics.notify_ending", "notify-ending")
	v.SetDefault("saga.topics.dead_letter", "saga-dlq")
	v.SetDefault("saga.topics.product_validation_success", "product-validation-success")
	v.SetDefault("saga.topics.product_validation_fail", "product-validation-fail")
	v.SetDefault("saga.topics.payment_success", "payment-success")
	v.SetDefault("saga.topics.payment_fail", "payment-fail")
	v.SetDefault("saga.topics.inventory_success", "inventory-success")
	v.SetDefault("saga.topics.inventory_fail", "inventory-fail")
	v.SetDefault("saga.sources.order", "ORDER_SERVICE")
	v.SetDefault("saga.sources.product_validation", "PRODUCT_VALIDATION_SERVICE")
	v.SetDefault("saga.sources.payment", "PAYMENT_SERVICE")
	v.SetDefault("saga.sources.inventory", "INVENTORY_SERVICE")

	// Worker defaults
	v.SetDefault("worker.lock_ttl", "30s")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.enable_metrics", true)

	// Instance ID
	v.SetDefault("instance_id", "order-saga-1")
}

func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Definition builds the saga definition table from the configured sources and
// topics: product validation, then payment, then inventory.
func (c *SagaConfig) Definition() (*saga.Definition, error) {
	return saga.NewDefinition("order-saga",
		saga.Step{
			Name:              c.Sources.ProductValidation,
			Index:             0,
			ForwardTopic:      c.Topics.ProductValidationSuccess,
			CompensationTopic: c.Topics.ProductValidationFail,
		},
		saga.Step{
			Name:              c.Sources.Payment,
			Index:             1,
			ForwardTopic:      c.Topics.PaymentSuccess,
			CompensationTopic: c.Topics.PaymentFail,
		},
		saga.Step{
			Name:              c.Sources.Inventory,
			Index:             2,
			ForwardTopic:      c.Topics.InventorySuccess,
			CompensationTopic: c.Topics.InventoryFail,
		},
	)
}
