// Package config wires viper configuration and the well-known filesystem
// paths the viewer uses. Config values resolve flag > env > config file >
// default, with env vars prefixed TASKVIEWER (e.g. TASKVIEWER_SERVER_PORT).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TASKVIEWER"

// Init loads .env (best effort), then the config file if one exists, and
// establishes env binding and defaults. cfgFile overrides the search path
// when non-empty.
func Init(cfgFile string) error {
	// .env is a convenience for local development; absence is not an error.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".taskviewer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil // no config file is fine
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 9998)
	viper.SetDefault("server.openBrowser", false)
	viper.SetDefault("watch.enabled", true)
}
