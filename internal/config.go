package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "RECRUITMENT"

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
	MaxConnsPerHost   int    `mapstructure:"max_conns_per_host"`
}

type SessionConfig struct {
	TokenFile string `mapstructure:"token_file"`
	// Watch enables fsnotify on the token file so logins from other
	// processes are picked up.
	Watch bool `mapstructure:"watch"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// LoadConfig reads config.yaml from files/, the working directory and the
// user config dir, then applies RECRUITMENT_* environment overrides. A
// missing config file is not an error.
func LoadConfig(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.base_url", envPrefix+"_API_BASE_URL", "API_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind api url env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("files")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "recruitment"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
	if config.API.RequestTimeoutSec <= 0 {
		return nil, fmt.Errorf("api.request_timeout_sec must be positive, got %d", config.API.RequestTimeoutSec)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.request_timeout_sec", 15)
	v.SetDefault("api.max_conns_per_host", 16)
	v.SetDefault("session.token_file", defaultTokenFile())
	v.SetDefault("session.watch", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".recruitment-token"
	}
	return filepath.Join(dir, "recruitment", "token")
}
