package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the environment-driven settings shared by both functions.
type Config struct {
	ProjectID        string `env:"PROJECT_ID" env-required:"true"`
	PhotosBucket     string `env:"PHOTOS_BUCKET" env-required:"true"`
	PhotosCollection string `env:"PHOTOS_COLLECTION" env-default:"photos"`
}

// Load reads configuration from the environment. Required variables missing
// at startup fail the function's initialization rather than its first event.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration from environment: %w", err)
	}
	return &cfg, nil
}
