package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocal(dir, "http://localhost:9000/uploads/")
	require.NoError(t, err)

	url, err := storage.Upload("shirt.jpeg", []byte("image-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/uploads/"))
	assert.True(t, strings.HasSuffix(url, "-shirt.jpeg"))

	name := strings.TrimPrefix(url, "http://localhost:9000/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestUploadSameNameDoesNotCollide(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocal(dir, "http://localhost:9000/uploads")
	require.NoError(t, err)

	first, err := storage.Upload("shirt.jpeg", []byte("a"))
	require.NoError(t, err)
	second, err := storage.Upload("shirt.jpeg", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
