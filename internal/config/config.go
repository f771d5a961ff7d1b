package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath          string `envconfig:"DB_PATH" default:"./data/workout.db"`
	DefaultTZ       string `envconfig:"DEFAULT_TZ" default:"Europe/Moscow"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`
	AdditionalTasks int    `envconfig:"ADDITIONAL_TASKS" default:"2"` // default supplemental draw size
}

// Load reads an optional .env file and then the environment into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
