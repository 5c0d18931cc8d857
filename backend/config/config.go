// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"port"`
	DatabaseURL    string        `mapstructure:"database_url"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	ChannelTTL     time.Duration `mapstructure:"channel_ttl"`
	ReadGraceTTL   time.Duration `mapstructure:"read_grace_ttl"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// Load reads configuration from an optional yaml file plus environment
// variables (env wins). JWT_SECRET is the only required setting.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "postgres://localhost/chat?sslmode=disable")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("jwt_issuer", "scaling-sniffle")
	v.SetDefault("channel_ttl", 7*24*time.Hour)
	v.SetDefault("read_grace_ttl", 10*time.Second)
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// No config file is fine; env and defaults cover everything.
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return &c, nil
}
