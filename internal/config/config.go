package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Push       PushConfig
	Session    SessionConfig
	Dashboard  DashboardConfig
	Redis      RedisConfig
	Database   PostgresConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BackendConfig points at the sensor backend that owns the data and the accounts
type BackendConfig struct {
	URL          string        `mapstructure:"url"`
	SensorPath   string        `mapstructure:"sensor_path"`
	LoginPath    string        `mapstructure:"login_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ForwardToken bool          `mapstructure:"forward_token"`
}

type PushConfig struct {
	Transport string         `mapstructure:"transport"`
	Event     string         `mapstructure:"event"`
	SocketIO  SocketIOConfig `mapstructure:"socketio"`
	MQTT      MQTTConfig     `mapstructure:"mqtt"`
}

type SocketIOConfig struct {
	// URL defaults to the backend URL
	URL              string        `mapstructure:"url"`
	Path             string        `mapstructure:"path"`
	Namespace        string        `mapstructure:"namespace"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

type MQTTConfig struct {
	Broker         string        `mapstructure:"broker"`
	TopicPrefix    string        `mapstructure:"topic_prefix"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	QoS            byte          `mapstructure:"qos"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	CookiePath string `mapstructure:"cookie_path"`
	Secure     bool   `mapstructure:"secure"`
	FlashName  string `mapstructure:"flash_name"`
}

type DashboardConfig struct {
	Title             string        `mapstructure:"title"`
	Timezone          string        `mapstructure:"timezone"`
	Placeholder       string        `mapstructure:"placeholder"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Enabled reports whether event counters should be kept in Redis
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// Enabled reports whether the audit log should be written to Postgres
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("ROOMWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Backend defaults; url has no sensible default but must be known to viper for env lookup
	viper.SetDefault("backend.url", "")
	viper.SetDefault("backend.sensor_path", "/sensor")
	viper.SetDefault("backend.login_path", "/auth/login")
	viper.SetDefault("backend.timeout", "10s")
	viper.SetDefault("backend.forward_token", true)

	// Push channel defaults
	viper.SetDefault("push.transport", "socketio")
	viper.SetDefault("push.event", "get")
	viper.SetDefault("push.socketio.url", "")
	viper.SetDefault("push.socketio.path", "/socket.io/")
	viper.SetDefault("push.socketio.namespace", "/")
	viper.SetDefault("push.socketio.handshake_timeout", "10s")
	viper.SetDefault("push.mqtt.broker", "")
	viper.SetDefault("push.mqtt.topic_prefix", "sensor")
	viper.SetDefault("push.mqtt.username", "")
	viper.SetDefault("push.mqtt.password", "")
	viper.SetDefault("push.mqtt.qos", 1)
	viper.SetDefault("push.mqtt.connect_timeout", "10s")

	// Session defaults
	viper.SetDefault("session.cookie_name", "token")
	viper.SetDefault("session.cookie_path", "/")
	viper.SetDefault("session.secure", false)
	viper.SetDefault("session.flash_name", "flash")

	// Dashboard defaults
	viper.SetDefault("dashboard.title", "Monitoring IOT Kamar Mandi")
	viper.SetDefault("dashboard.timezone", "Asia/Jakarta")
	viper.SetDefault("dashboard.placeholder", "Loading...")
	viper.SetDefault("dashboard.heartbeat_interval", "5s")

	// Redis defaults (empty host disables counters)
	viper.SetDefault("redis.host", "")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "roomwatch")

	// Database defaults (empty host disables the audit log)
	viper.SetDefault("database.host", "")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "roomwatch")
	viper.SetDefault("database.sslmode", "disable")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Backend.URL == "" {
		return fmt.Errorf("backend URL is required")
	}
	if _, err := url.ParseRequestURI(config.Backend.URL); err != nil {
		return fmt.Errorf("backend URL is invalid: %w", err)
	}
	switch config.Push.Transport {
	case "socketio":
	case "mqtt":
		if config.Push.MQTT.Broker == "" {
			return fmt.Errorf("mqtt broker is required for the mqtt push transport")
		}
	default:
		return fmt.Errorf("unknown push transport %q", config.Push.Transport)
	}
	if config.Push.Event == "" {
		return fmt.Errorf("push event name is required")
	}
	if config.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}
	if _, err := time.LoadLocation(config.Dashboard.Timezone); err != nil {
		return fmt.Errorf("dashboard timezone is invalid: %w", err)
	}
	switch strings.ToUpper(config.Monitoring.LogLevel) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", config.Monitoring.LogLevel)
	}
	return nil
}
