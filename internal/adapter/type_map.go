package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// TypeMap lists extra exported type names per source file name, for types a
// module re-exports that the analyzer cannot see.
type TypeMap map[string][]string

// TypesFor returns the extra names configured for a source file name.
func (t TypeMap) TypesFor(sourceName string) []string {
	if t == nil {
		return nil
	}

	return t[sourceName]
}

// TypeMapLoader reads a TypeMap file.
type TypeMapLoader interface {
	LoadTypeMap(ctx context.Context, path m.Path) (TypeMap, error)
}

// YAMLTypeMapLoader decodes a YAML document of the form:
//
//	history.zig: [HistoryEntry, HistoryManager]
//	client.zig:
//	  - Client
type YAMLTypeMapLoader struct{}

// NewTypeMapLoader returns the YAML TypeMapLoader.
func NewTypeMapLoader() *YAMLTypeMapLoader {
	return &YAMLTypeMapLoader{}
}

// LoadTypeMap reads path. An empty path or a missing file yields an empty map.
func (l *YAMLTypeMapLoader) LoadTypeMap(_ context.Context, path m.Path) (TypeMap, error) {
	if path == "" {
		return TypeMap{}, nil
	}

	data, err := os.ReadFile(string(path))
	if errors.Is(err, fs.ErrNotExist) {
		return TypeMap{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read type map: %w", err)
	}

	typeMap := TypeMap{}
	if err := yaml.Unmarshal(data, &typeMap); err != nil {
		return nil, fmt.Errorf("parse type map %s: %w", path, err)
	}

	return typeMap, nil
}
