// internal/translate/store_test.go
package translate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.json")
	ctx := context.Background()

	store := NewFileStore(path)
	err := store.WriteBatch(ctx, map[int64]map[string]string{
		9141: {"en": "Taj Mahal", "de": "Tadsch Mahal"},
		243:  {"en": "Eiffel Tower"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	loaded, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, "Taj Mahal", loaded.Get(9141)["en"])
	assert.Equal(t, "Tadsch Mahal", loaded.Get(9141)["de"])
	assert.Equal(t, "Eiffel Tower", loaded.Get(243)["en"])
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestFileStore_LineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.json")
	store := NewFileStore(path)
	err := store.WriteBatch(context.Background(), map[int64]map[string]string{
		9141: {"en": "Taj Mahal"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\"9141\",{\"en\":\"Taj Mahal\"}]\n", string(content))
}

func TestFileStore_LoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.json")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestOpenStore_SchemeDispatch(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenStore(filepath.Join(dir, "plain.json"))
	require.NoError(t, err)
	_, ok := store.(*FileStore)
	assert.True(t, ok, "bare path should open a file store")
	require.NoError(t, store.Close())

	_, err = OpenStore("redis://localhost")
	assert.Error(t, err)
}

func TestSQLStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "translations.db")

	store, err := OpenSQLStore(dbURL)
	require.NoError(t, err)
	assert.NotEmpty(t, store.SessionID())

	err = store.WriteBatch(ctx, map[int64]map[string]string{
		9141: {"en": "Taj Mahal"},
	})
	require.NoError(t, err)

	// Upsert: a rewrite of the same key wins.
	err = store.WriteBatch(ctx, map[int64]map[string]string{
		9141: {"en": "Taj Mahal", "fr": "Taj Mahal"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLStore(dbURL)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.Equal(t, "Taj Mahal", loaded.Get(9141)["en"])
	assert.Equal(t, "Taj Mahal", loaded.Get(9141)["fr"])
}
