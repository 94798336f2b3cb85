package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// Duration parses yaml values like "10s" or "5m" via time.ParseDuration.
// Bare integers are taken as nanoseconds, same as time.Duration itself.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var asString string
	if err := unmarshal(&asString); err == nil {
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var asInt int64
	if err := unmarshal(&asInt); err != nil {
		return err
	}
	*d = Duration(asInt)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds every tunable of the thread-page client. A single yaml file
// configures it; zero values fall back to the documented defaults so a
// minimal file only needs the server section.
type Config struct {
	Server   Server   `yaml:"server" validate:"required"`
	Upload   Upload   `yaml:"upload"`
	Realtime Realtime `yaml:"realtime"`

	PollInterval Duration `yaml:"poll_interval"`
	Locale       string   `yaml:"locale"`
	StorePath    string   `yaml:"store_path"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

type Server struct {
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	SocketURL string `yaml:"socket_url" validate:"required"`
}

type Upload struct {
	MaxFiles         int   `yaml:"max_files"`
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`
}

type Realtime struct {
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
	MaxAttempts  int      `yaml:"max_attempts"`
	DialTimeout  Duration `yaml:"dial_timeout"`
}

const (
	defaultMaxFiles     = 4
	defaultMaxFileSize  = 8 << 20 // 8 MiB
	defaultInitialDelay = time.Second
	defaultMaxDelay     = 5 * time.Second
	defaultMaxAttempts  = 5
	defaultDialTimeout  = 20 * time.Second
	defaultPollInterval = 30 * time.Second
	defaultLocale       = "ru"
	defaultStorePath    = "imageboard.db"
)

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

// MustLoad reads and validates the client config, panicking on any problem.
func MustLoad(configPath string) *Config {
	var cfg Config
	mustLoadPath(configPath, &cfg)
	cfg.applyDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		panic("invalid config: " + err.Error())
	}
	return &cfg
}

// Default returns a config with every default applied and the given server
// endpoints. Used by tests and by the CLI when no config file is passed.
func Default(baseURL, socketURL string) *Config {
	cfg := Config{Server: Server{BaseURL: baseURL, SocketURL: socketURL}}
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Upload.MaxFiles == 0 {
		c.Upload.MaxFiles = defaultMaxFiles
	}
	if c.Upload.MaxFileSizeBytes == 0 {
		c.Upload.MaxFileSizeBytes = defaultMaxFileSize
	}
	if c.Realtime.InitialDelay == 0 {
		c.Realtime.InitialDelay = Duration(defaultInitialDelay)
	}
	if c.Realtime.MaxDelay == 0 {
		c.Realtime.MaxDelay = Duration(defaultMaxDelay)
	}
	if c.Realtime.MaxAttempts == 0 {
		c.Realtime.MaxAttempts = defaultMaxAttempts
	}
	if c.Realtime.DialTimeout == 0 {
		c.Realtime.DialTimeout = Duration(defaultDialTimeout)
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.StorePath == "" {
		c.StorePath = defaultStorePath
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
