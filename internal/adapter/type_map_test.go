package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

func TestYAMLTypeMapLoader_LoadTypeMap(t *testing.T) {
	loader := NewTypeMapLoader()
	ctx := context.Background()

	t.Run("block and flow sequences", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "types.yaml")
		require.NoError(t, os.WriteFile(path, []byte("history.zig: [HistoryEntry, HistoryManager]\nclient.zig:\n  - Client\n"), 0o600))

		typeMap, err := loader.LoadTypeMap(ctx, m.Path(path))
		require.NoError(t, err)

		assert.Equal(t, []string{"HistoryEntry", "HistoryManager"}, typeMap.TypesFor("history.zig"))
		assert.Equal(t, []string{"Client"}, typeMap.TypesFor("client.zig"))
		assert.Nil(t, typeMap.TypesFor("other.zig"))
	})

	t.Run("empty path", func(t *testing.T) {
		typeMap, err := loader.LoadTypeMap(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, typeMap)
	})

	t.Run("missing file", func(t *testing.T) {
		typeMap, err := loader.LoadTypeMap(ctx, m.Path(filepath.Join(t.TempDir(), "absent.yaml")))
		require.NoError(t, err)
		assert.Empty(t, typeMap)
	})

	t.Run("malformed document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "types.yaml")
		require.NoError(t, os.WriteFile(path, []byte("history.zig: {unclosed\n"), 0o600))

		_, err := loader.LoadTypeMap(ctx, m.Path(path))
		require.Error(t, err)
	})
}

func TestTypeMap_NilSafe(t *testing.T) {
	var typeMap TypeMap

	assert.Nil(t, typeMap.TypesFor("history.zig"))
}
