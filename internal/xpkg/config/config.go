package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DB       *Postgres `yaml:"database"`
	RMQ      *RabbitMQ `yaml:"rabbitmq"`
	Redis    *Redis    `yaml:"redis"`
	Services *Services `yaml:"services"`
	Billing  *Billing  `yaml:"billing"`
	SMTP     *SMTP     `yaml:"smtp"`
}

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

type RabbitMQ struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	VHost    string `yaml:"vhost"`
}

func (r *RabbitMQ) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s", r.User, r.Password, r.Host, r.Port, r.VHost)
}

type Redis struct {
	Addr string `yaml:"addr"`
}

// Services holds the base URLs of external collaborators. They are passed
// explicitly to the adapters that call them; there is no global registry.
type Services struct {
	CatalogURL string `yaml:"catalog_url"`
	UsersURL   string `yaml:"users_url"`
}

type Billing struct {
	// TaxRate is a decimal fraction, e.g. "0.10" for 10%.
	TaxRate string `yaml:"tax_rate"`
}

type SMTP struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	From string `yaml:"from"`
}

// Load reads the YAML file at path and applies environment overrides for the
// values that differ between deployments.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DB != nil {
		cfg.DB.Host = getEnv("POSTGRES_HOST", cfg.DB.Host)
		cfg.DB.Port = getEnv("POSTGRES_PORT", cfg.DB.Port)
		cfg.DB.User = getEnv("POSTGRES_USER", cfg.DB.User)
		cfg.DB.Password = getEnv("POSTGRES_PASSWORD", cfg.DB.Password)
		cfg.DB.Database = getEnv("POSTGRES_DATABASE", cfg.DB.Database)
	}
	if cfg.RMQ != nil {
		cfg.RMQ.Host = getEnv("RABBITMQ_HOST", cfg.RMQ.Host)
		cfg.RMQ.Port = getEnv("RABBITMQ_PORT", cfg.RMQ.Port)
		cfg.RMQ.User = getEnv("RABBITMQ_USER", cfg.RMQ.User)
		cfg.RMQ.Password = getEnv("RABBITMQ_PASSWORD", cfg.RMQ.Password)
	}
	if cfg.Redis != nil {
		cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
