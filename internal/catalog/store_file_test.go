package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniCatalog/internal/catalog"
)

func newFileStore(t *testing.T, content string) *catalog.FileStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return catalog.NewFileStore(path)
}

func TestFileStore_LoadReadsDocumentInOrder(t *testing.T) {
	s := newFileStore(t, `[
  {"id": 3, "productName": "Chuột", "price": 199000, "image": "", "quantity": 2},
  {"id": 1, "productName": "Bàn phím", "price": 450000.5, "image": "data:image/png;base64,AA==", "quantity": 1}
]`)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.Product{
		{ID: 3, ProductName: "Chuột", Price: 199000, Quantity: 2},
		{ID: 1, ProductName: "Bàn phím", Price: 450000.5, Image: "data:image/png;base64,AA==", Quantity: 1},
	}, got)
}

func TestFileStore_LoadEmptyArray(t *testing.T) {
	s := newFileStore(t, "[]")

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileStore_LoadErrors(t *testing.T) {
	ctx := context.Background()

	_, err := newFileStore(t, "").Load(ctx)
	assert.ErrorIs(t, err, catalog.ErrStoreUnavailable, "missing file")

	_, err = newFileStore(t, `{"id": 1}`).Load(ctx)
	assert.ErrorIs(t, err, catalog.ErrStoreCorrupt, "object instead of array")

	_, err = newFileStore(t, `[{"id": 1,`).Load(ctx)
	assert.ErrorIs(t, err, catalog.ErrStoreCorrupt, "truncated")
}

func TestFileStore_SaveLoadRoundTripIsByteStable(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, "")

	require.NoError(t, s.Save(ctx, []catalog.Product{
		{ID: 1, ProductName: "A & <b>", Price: 10, Image: "", Quantity: 1},
		{ID: 2, ProductName: "B", Price: 12.75, Image: "https://example.com/b.png?x=1&y=2", Quantity: 0},
	}))
	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, loaded))

	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), `"productName": "A & <b>"`, "html is not escaped")
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	s := newFileStore(t, "[]")
	require.NoError(t, s.Save(context.Background(), []catalog.Product{{ID: 1, ProductName: "A"}}))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "products.json", entries[0].Name())
}

func TestFileStore_SaveNilWritesEmptyArray(t *testing.T) {
	s := newFileStore(t, "")
	require.NoError(t, s.Save(context.Background(), nil))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestFileStore_SaveIntoMissingDirectoryFails(t *testing.T) {
	s := catalog.NewFileStore(filepath.Join(t.TempDir(), "nope", "products.json"))

	err := s.Save(context.Background(), nil)
	assert.ErrorIs(t, err, catalog.ErrStoreUnavailable)
}

func TestFileStore_EnsureFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "database", "products.json")
	s := catalog.NewFileStore(path)

	assert.ErrorIs(t, s.Ping(ctx), catalog.ErrStoreUnavailable)

	require.NoError(t, s.EnsureFile())
	require.NoError(t, s.Ping(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, []catalog.Product{{ID: 1, ProductName: "A"}}))
	require.NoError(t, s.EnsureFile(), "existing document is kept")

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
