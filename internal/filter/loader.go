package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// StaticLoader always yields cfg.
func StaticLoader(cfg Config) Loader {
	return func(context.Context) (Config, error) { return cfg.clone(), nil }
}

// FileLoader reads a JSON document from path on every load. Fields missing
// from the document keep their default values.
func FileLoader(path string) Loader {
	return func(context.Context) (Config, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		return Decode(b)
	}
}

// Decode parses a JSON document over the defaults.
func Decode(b []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode filter config: %w", err)
	}
	return cfg, nil
}
