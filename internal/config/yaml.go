package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAMLLoader is a kong.ConfigurationLoader for YAML files. Keys are flag
// names, for example:
//
//	output-dir: ./out
//	block-size: 4
//
// Dashes in top-level keys become underscores, which is the form kong's JSON
// resolver looks up, so "output-dir" and "output_dir" are equivalent. The
// document is then re-encoded as JSON and handed to that resolver.
func YAMLLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}
	normalized := make(map[string]any, len(values))
	for key, value := range values {
		normalized[strings.ReplaceAll(key, "-", "_")] = value
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("re-encoding YAML config: %w", err)
	}
	return kong.JSON(bytes.NewReader(data))
}
