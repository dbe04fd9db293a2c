package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables onto config. Variables that are not
// set leave the current value untouched. When dotenvPath points to an existing
// file it is loaded first; real environment variables win over the file.
func parseEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				return fmt.Errorf("error loading %s: %w", dotenvPath, err)
			}
		}
	}

	if err := env.ParseWithFuncs(config, envParsers); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}

	return nil
}

var envParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(time.Duration(0)): parseDuration,
}

// parseDuration accepts Go duration strings ("15m") and bare integers, which
// are read as seconds.
func parseDuration(v string) (interface{}, error) {
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
