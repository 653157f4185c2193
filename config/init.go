package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server struct {
		Address  string `mapstructure:"address"`   // 0.0.0.0
		HTTPPort string `mapstructure:"http_port"` // 8080
		APIToken string `mapstructure:"api_token"` // bearer token for /api; empty disables auth
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error|fatal
		Format string `mapstructure:"format"` // text|json
		File   string `mapstructure:"file"`   // log file prefix; empty means stdout only
	} `mapstructure:"logs"`

	Database struct {
		Driver string `mapstructure:"driver"` // "postgres" | "mysql" | "sqlite" | "" (in-memory)
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment (SERVER_HTTP_PORT, DATABASE_DRIVER, ...), in rising
// priority. file overrides the CONFIG_FILE variable and the search path.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.api_token", "")

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.format", "text")
	v.SetDefault("logs.file", "")

	// no driver: devices live in memory
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")

	if file == "" {
		file = os.Getenv("CONFIG_FILE")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "devicesapi"))
		}
		v.AddConfigPath("/etc/devicesapi")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad(file string) *Config {
	cfg, err := Load(file)
	if err != nil {
		panic(err)
	}
	return cfg
}

func validate(c *Config) error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must not be empty")
	}
	if strings.TrimSpace(c.Server.HTTPPort) == "" {
		return errors.New("server.http_port must not be empty")
	}
	switch c.Database.Driver {
	case "":
	case "sqlite", "postgres", "mysql":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn must be set for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	return nil
}
