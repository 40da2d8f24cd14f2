package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lomoval/otus-golang/events_manager/internal/logger"
	"github.com/lomoval/otus-golang/events_manager/internal/storagebuilder"
	"github.com/lomoval/otus-golang/events_manager/internal/terminal"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type Config struct {
	Logger   logger.Config
	Storage  storagebuilder.Config
	Terminal terminal.Config
}

// NewConfig reads configFile. String values "$env:NAME" are taken from the
// environment variable NAME, which may also come from envFile.
func NewConfig(configFile string, envFile string) (Config, error) {
	config := Config{}
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config, fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configFile)

	v.SetDefault("logger.level", "WARN")
	v.SetDefault("logger.file", "")
	v.SetDefault("storage.storageType", "sqlite")
	v.SetDefault("storage.database.path", "events.db")
	v.SetDefault("storage.database.host", "127.0.0.1")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("terminal.clearScreen", false)

	err := v.ReadInConfig()
	if err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
	}
	keys := v.AllKeys()
	for _, key := range keys {
		env := v.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := v.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return config, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}
