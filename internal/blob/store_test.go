package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorePut(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore(dir, "http://localhost:8080/uploads/")

	url, err := s.Put(context.Background(), "room.JPG", []byte("fake-image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"), "extension should be kept lowercased: %s", url)

	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-image-bytes"), data)
}

func TestDiskStorePutUniqueNames(t *testing.T) {
	s := NewDiskStore(t.TempDir(), "http://x/uploads")

	u1, err := s.Put(context.Background(), "a.png", []byte("one"))
	require.NoError(t, err)
	u2, err := s.Put(context.Background(), "a.png", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, u1, u2)
}

func TestDiskStoreCreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewDiskStore(dir, "http://x/uploads")

	_, err := s.Put(context.Background(), "b.webp", []byte("blob"))
	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
