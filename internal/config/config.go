package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"

	"github.com/barberly/booking-engine/internal/domain"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Драйверы хранилища, блокировок и событий
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
	DriverNone     = "none"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Booking   BookingConfig   `toml:"booking"`
	Worker    WorkerConfig    `toml:"worker"`
	Locker    LockerConfig    `toml:"locker"`
	Redis     RedisConfig     `toml:"redis"`
	Events    EventsConfig    `toml:"events"`
	Kafka     KafkaConfig     `toml:"kafka"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Driver          string `toml:"driver"` // postgres | memory
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig параметры движка доступности и резервирования
type BookingConfig struct {
	SlotGranularityMinutes int      `toml:"slot_granularity_minutes"`
	PaymentGraceMinutes    int      `toml:"payment_grace_minutes"`
	MinNoticeMinutes       int      `toml:"min_notice_minutes"`
	DeferredPaymentMethods []string `toml:"deferred_payment_methods"`
	Timezone               string   `toml:"timezone"`
}

// Policy собирает domain.BookingPolicy из конфигурации
func (c BookingConfig) Policy() (domain.BookingPolicy, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return domain.BookingPolicy{}, fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}

	methods := make([]domain.PaymentMethod, 0, len(c.DeferredPaymentMethods))
	for _, m := range c.DeferredPaymentMethods {
		methods = append(methods, domain.PaymentMethod(m))
	}

	return domain.BookingPolicy{
		SlotGranularityMinutes: c.SlotGranularityMinutes,
		MinNoticeMinutes:       c.MinNoticeMinutes,
		PaymentGracePeriod:     time.Duration(c.PaymentGraceMinutes) * time.Minute,
		DeferredPaymentMethods: methods,
		Location:               loc,
	}, nil
}

// WorkerConfig настройки наблюдателя оплаты
type WorkerConfig struct {
	Enabled              bool `toml:"enabled"`
	SweepIntervalSeconds int  `toml:"sweep_interval_seconds"`
	SweepTimeoutSeconds  int  `toml:"sweep_timeout_seconds"`
	BatchSize            int  `toml:"batch_size"`
}

// LockerConfig настройки блокировки (барбер, день)
type LockerConfig struct {
	Driver        string `toml:"driver"` // memory | redis | none
	TTLMillis     int    `toml:"ttl_ms"`
	RetryMillis   int    `toml:"retry_ms"`
	WaitTimeoutMs int    `toml:"wait_timeout_ms"`
}

// RedisConfig настройки подключения к Redis
type RedisConfig struct {
	Addrs    []string `toml:"addrs"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
}

// EventsConfig выбор шины событий
type EventsConfig struct {
	Driver string `toml:"driver"` // memory | kafka | rabbitmq
}

// KafkaConfig настройки Kafka
type KafkaConfig struct {
	Brokers        []string `toml:"brokers"`
	Topic          string   `toml:"topic"`
	MaxAttempts    int      `toml:"max_attempts"`
	BatchTimeoutMs int      `toml:"batch_timeout_ms"`
}

// RabbitMQConfig настройки RabbitMQ
type RabbitMQConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// RateLimitConfig ограничение частоты создания бронирований с одного IP
type RateLimitConfig struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
	Burst             int  `toml:"burst"`
	// TrustProxy учитывать X-Forwarded-For (только за доверенным обратным прокси)
	TrustProxy bool `toml:"trust_proxy"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "booking",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "booking-engine",
		},
		Booking: BookingConfig{
			SlotGranularityMinutes: domain.DefaultSlotGranularityMinutes,
			PaymentGraceMinutes:    domain.DefaultPaymentGraceMinutes,
			MinNoticeMinutes:       domain.DefaultMinNoticeMinutes,
			DeferredPaymentMethods: []string{string(domain.PaymentPix), string(domain.PaymentBankTransfer)},
			Timezone:               "UTC",
		},
		Worker: WorkerConfig{
			Enabled:              true,
			SweepIntervalSeconds: 30,
			SweepTimeoutSeconds:  20,
			BatchSize:            100,
		},
		Locker: LockerConfig{
			Driver:        DriverMemory,
			TTLMillis:     5000,
			RetryMillis:   50,
			WaitTimeoutMs: 3000,
		},
		Redis:  RedisConfig{Addrs: []string{"localhost:6379"}},
		Events: EventsConfig{Driver: DriverMemory},
		Kafka: KafkaConfig{
			Topic:          "booking-events",
			MaxAttempts:    3,
			BatchTimeoutMs: 10,
		},
		RabbitMQ: RabbitMQConfig{Exchange: "booking.events"},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             10,
		},
	}
}

// Load читает TOML файл поверх значений по умолчанию и валидирует результат
// Пароль БД можно переопределить переменной окружения DB_PASSWORD
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Booking.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("%w: booking.slot_granularity_minutes must be positive", ErrInvalidConfig)
	}
	if c.Booking.PaymentGraceMinutes <= 0 {
		return fmt.Errorf("%w: booking.payment_grace_minutes must be positive", ErrInvalidConfig)
	}
	if c.Booking.MinNoticeMinutes < 0 {
		return fmt.Errorf("%w: booking.min_notice_minutes must not be negative", ErrInvalidConfig)
	}
	for _, m := range c.Booking.DeferredPaymentMethods {
		if !domain.PaymentMethod(m).IsValid() {
			return fmt.Errorf("%w: unknown deferred payment method %q", ErrInvalidConfig, m)
		}
	}
	if _, err := c.Booking.Policy(); err != nil {
		return err
	}

	if c.Worker.Enabled && c.Worker.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("%w: worker.sweep_interval_seconds must be positive", ErrInvalidConfig)
	}

	switch c.Locker.Driver {
	case DriverMemory, DriverNone:
	case DriverRedis:
		if len(c.Redis.Addrs) == 0 {
			return fmt.Errorf("%w: redis.addrs required for redis locker", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown locker.driver %q", ErrInvalidConfig, c.Locker.Driver)
	}

	switch c.Events.Driver {
	case DriverMemory:
	case DriverKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return fmt.Errorf("%w: kafka.brokers and kafka.topic required", ErrInvalidConfig)
		}
	case DriverRabbitMQ:
		if c.RabbitMQ.URL == "" || c.RabbitMQ.Exchange == "" {
			return fmt.Errorf("%w: rabbitmq.url and rabbitmq.exchange required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown events.driver %q", ErrInvalidConfig, c.Events.Driver)
	}

	return nil
}
