package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = "local"
	defaultConfigDir     = ".tripkeeper"
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	ServerAddress string `mapstructure:"server_address"`
	LogLevel      string `mapstructure:"log_level"`
	ConfigDir     string `mapstructure:"config_dir"`
	TokenPath     string `mapstructure:"token_path"`
	DataPath      string `mapstructure:"data_path"`
	EnableTLS     bool   `mapstructure:"enable_tls"`

	// SyncInterval is the period of the background pull+push cycle.
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	// PendingEscalation is how long an operation may stay queued before the
	// sync status starts reporting it as overdue.
	PendingEscalation time.Duration `mapstructure:"pending_escalation"`
}

// MustLoad loads the client configuration from .env and the environment,
// creating the config directory on first run.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SYNC_INTERVAL_SECONDS", 30)
	viper.SetDefault("PENDING_ESCALATION_MINUTES", 60)
	viper.SetDefault("ENABLE_TLS", false)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		fmt.Printf("cannot create config directory: %v\n", err)
	}

	config := &Config{
		Env:               viper.GetString("APP_ENV"),
		ServerAddress:     viper.GetString("SERVER_ADDRESS"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		ConfigDir:         configDir,
		TokenPath:         filepath.Join(configDir, "session.json"),
		DataPath:          filepath.Join(configDir, "tripkeeper.db"),
		SyncInterval:      time.Duration(viper.GetInt("SYNC_INTERVAL_SECONDS")) * time.Second,
		PendingEscalation: time.Duration(viper.GetInt("PENDING_ESCALATION_MINUTES")) * time.Minute,
		EnableTLS:         viper.GetBool("ENABLE_TLS"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval must be positive")
	}
	return nil
}

func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
