// Package config loads sweep settings from the environment, with an
// optional config file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AmadeusURL      string
	ClientID        string
	ClientSecret    string
	CurrencyCode    string
	MaxAttempts     int
	BackoffInterval time.Duration
	PaceInterval    time.Duration
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("amadeus_url", "https://test.api.amadeus.com")
	v.SetDefault("currency_code", "EUR")
	v.SetDefault("max_attempts", 3)
	v.SetDefault("backoff_interval", "1s")
	v.SetDefault("pace_interval", "100ms")

	if path := os.Getenv("FARESWEEP_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	backoffInterval, err := time.ParseDuration(v.GetString("backoff_interval"))
	if err != nil {
		return nil, fmt.Errorf("bad backoff_interval: %w", err)
	}
	paceInterval, err := time.ParseDuration(v.GetString("pace_interval"))
	if err != nil {
		return nil, fmt.Errorf("bad pace_interval: %w", err)
	}

	return &Config{
		AmadeusURL:      v.GetString("amadeus_url"),
		ClientID:        v.GetString("amadeus_api_token"),
		ClientSecret:    v.GetString("amadeus_api_secret"),
		CurrencyCode:    v.GetString("currency_code"),
		MaxAttempts:     v.GetInt("max_attempts"),
		BackoffInterval: backoffInterval,
		PaceInterval:    paceInterval,
	}, nil
}
