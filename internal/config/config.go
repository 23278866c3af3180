package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Mode        string `mapstructure:"mode"`
	APIPort     int    `mapstructure:"api_port"`
	GatewayPort int    `mapstructure:"gateway_port"`
	DBPath      string `mapstructure:"db_path"`
	ReadLimit   int64  `mapstructure:"read_limit"`
	Secret      string `mapstructure:"secret"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("api_port", 8080)
	v.SetDefault("gateway_port", 8090)
	v.SetDefault("db_path", "./data/questhall.db")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("secret", "questhall-dev-secret")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
