package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveOpenDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	name, err := store.Save(ctx, "photo.PNG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, "photo")

	rc, err := store.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "image-bytes", string(data))

	require.NoError(t, store.Delete(ctx, name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.NoError(t, store.Delete(ctx, name))
}

func TestLocal_DistinctNames(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := store.Save(ctx, "doc.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save(ctx, "doc.pdf", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocal_RejectsPaths(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "..", "../etc/passwd", `a\b`} {
		_, err := store.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, store.Delete(ctx, name), ErrInvalidName, name)
	}
}

func TestStoredName_Extension(t *testing.T) {
	assert.Equal(t, ".pdf", filepath.Ext(storedName("../../x/report.pdf")))
	assert.Equal(t, "", filepath.Ext(storedName("noext")))
	assert.Equal(t, "", filepath.Ext(storedName("file.averyveryverylongextension")))
}
