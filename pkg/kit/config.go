package kit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type ConfigSource struct {
	// Prefix selects environment variables, e.g. "CATALOG_" maps
	// CATALOG_STORE_PATH to store.path.
	Prefix   string
	File     string
	EnvFile  string
	Defaults map[string]any
}

// LoadConfig layers defaults, the yaml file, the .env file and the process
// environment (highest priority) into T, then validates T's struct tags.
// Missing files are skipped.
func LoadConfig[T any](src ConfigSource) (T, error) {
	var cfg T
	k := koanf.New(".")

	if len(src.Defaults) > 0 {
		if err := k.Load(confmap.Provider(src.Defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("load defaults: %w", err)
		}
	}

	if src.File != "" {
		if err := k.Load(file.Provider(src.File), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", src.File, err)
		}
	}

	toKey := func(s string) string {
		s = strings.TrimPrefix(s, src.Prefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}

	if src.EnvFile != "" {
		vars, err := godotenv.Read(src.EnvFile)
		switch {
		case err == nil:
			m := make(map[string]any, len(vars))
			for key, v := range vars {
				if strings.HasPrefix(key, src.Prefix) {
					m[toKey(key)] = v
				}
			}
			if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
				return cfg, fmt.Errorf("load %s: %w", src.EnvFile, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("read %s: %w", src.EnvFile, err)
		}
	}

	if err := k.Load(env.Provider(src.Prefix, ".", toKey), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
