package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Events   EventsConfig   `yaml:"events"`
	Cache    CacheConfig    `yaml:"cache"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	HTTPPort     int           `yaml:"http_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	StaticDir    string        `yaml:"static_dir"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
	// If set, logs are also written to this file
	File string `yaml:"file"`
}

// UpstreamConfig describes the match data provider and the gateway in front of it
type UpstreamConfig struct {
	// BaseURL is where the normalizer sends its requests, normally the local gateway
	BaseURL string `yaml:"base_url"`
	// GatewayURL is the provider origin the gateway forwards to
	GatewayURL         string            `yaml:"gateway_url"`
	Referer            string            `yaml:"referer"`
	Origin             string            `yaml:"origin"`
	InsecureSkipVerify bool              `yaml:"insecure_skip_verify"`
	Timeout            time.Duration     `yaml:"timeout"`
	DetailTabID        string            `yaml:"detail_tab_id"`
	Headers            map[string]string `yaml:"headers"`
	SourceURLFormat    string            `yaml:"source_url_format"`
}

// EventsConfig holds the NATS event feed settings
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	Embedded      bool   `yaml:"embedded"`
	EmbeddedPort  int    `yaml:"embedded_port"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// CacheConfig holds the Redis snapshot cache settings
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// DefaultsConfig holds the initial operator text used until something is persisted
type DefaultsConfig struct {
	Roster     string `yaml:"roster"`
	MatchInput string `yaml:"match_input"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Set defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = "127.0.0.1"
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	// Note: StaticDir intentionally has no default - empty means don't serve static files
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/var/lib/courtside/courtside.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// Upstream defaults: talk to our own gateway, which forwards to the provider
	if cfg.Upstream.GatewayURL == "" {
		cfg.Upstream.GatewayURL = "https://gateway.xiaoqiumi.com"
	}
	if cfg.Upstream.Referer == "" {
		cfg.Upstream.Referer = "https://www.xiaoqiumi.com/"
	}
	if cfg.Upstream.Origin == "" {
		cfg.Upstream.Origin = "https://www.xiaoqiumi.com"
	}
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = fmt.Sprintf("http://%s:%d/api/proxy", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 15 * time.Second
	}

	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = "courtside"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}

	return &cfg, nil
}
