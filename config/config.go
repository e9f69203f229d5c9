// Package config loads the client configuration from an optional YAML
// file with environment override.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type ServerConf struct {
	// BaseURL includes the API prefix, e.g. http://159.75.135.120/api/v1.
	BaseURL string `mapstructure:"base_url"`
}

type ChatConf struct {
	PageSize int `mapstructure:"page_size"`
}

type MetricsConf struct {
	// Addr exposes /metrics when non-empty, e.g. 127.0.0.1:9090.
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Server  ServerConf  `mapstructure:"server"`
	Chat    ChatConf    `mapstructure:"chat"`
	Metrics MetricsConf `mapstructure:"metrics"`

	// DataDir holds the token database and profiler output.
	DataDir string `mapstructure:"data_dir"`
}

func defaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.SetDefault("server.base_url", "http://127.0.0.1:8000/api/v1")
	v.SetDefault("chat.page_size", 30)
	// AutomaticEnv only consults keys viper already knows about, so every
	// struct key needs a default for its env override to register.
	v.SetDefault("metrics.addr", "")
	v.SetDefault("data_dir", filepath.Join(home, ".bitechat"))
}

// Load reads path when non-empty, otherwise returns defaults. Environment
// variables (BITECHAT_SERVER_BASE_URL etc.) override either.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("bitechat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Chat.PageSize <= 0 {
		cfg.Chat.PageSize = 30
	}
	return &cfg, nil
}
