package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the storefront terminal
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Terminal TerminalConfig `yaml:"terminal"`
}

// BackendConfig holds the REST backend settings
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// RedisConfig holds the session store connection
type RedisConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// PricingConfig holds the charges applied at checkout
type PricingConfig struct {
	ServiceFeeRate   float64 `yaml:"service_fee_rate"`
	DeliveryFee      float64 `yaml:"delivery_fee"`
	OutOfPremisesFee float64 `yaml:"out_of_premises_fee"`
}

// TerminalConfig holds the terminal HTTP API settings
type TerminalConfig struct {
	Port     int    `yaml:"port"`
	Terminal string `yaml:"terminal_id"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	return Parse(content)
}

// Parse decodes YAML content into a Config
func Parse(content []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 15 * time.Second
	}
	if c.Backend.Retries == 0 {
		c.Backend.Retries = 3
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 5672
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.SessionTTL == 0 {
		c.Redis.SessionTTL = 12 * time.Hour
	}
	if c.Pricing.ServiceFeeRate == 0 {
		c.Pricing.ServiceFeeRate = 0.02
	}
	if c.Pricing.DeliveryFee == 0 {
		c.Pricing.DeliveryFee = 25
	}
	if c.Pricing.OutOfPremisesFee == 0 {
		c.Pricing.OutOfPremisesFee = 25
	}
	if c.Terminal.Port == 0 {
		c.Terminal.Port = 3000
	}
}

// Validate checks values that have no sensible default
func (c *Config) Validate() error {
	if c.Pricing.ServiceFeeRate < 0 || c.Pricing.ServiceFeeRate >= 1 {
		return fmt.Errorf("pricing.service_fee_rate must be in [0, 1)")
	}
	if c.Pricing.DeliveryFee < 0 || c.Pricing.OutOfPremisesFee < 0 {
		return fmt.Errorf("pricing fees must not be negative")
	}
	if c.Backend.Retries < 0 {
		return fmt.Errorf("backend.retries must not be negative")
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

// RedisAddr returns the host:port address of the session store
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
