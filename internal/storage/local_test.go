package storage

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

func newLocalFixture(t *testing.T) (Storage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewLocal(t *testing.T) {
	t.Run("creates a missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "uploads")

		_, err := NewLocal(dir)

		assert.NoError(t, err)
		st, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, st.IsDir())
	})

	t.Run("empty dir is rejected", func(t *testing.T) {
		_, err := NewLocal("")
		assert.Error(t, err)
	})
}

func TestLocalPutGetDelete(t *testing.T) {
	store, dir := newLocalFixture(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "doc.pdf", strings.NewReader("%PDF-1.4 body"), PutObjectOptions{
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", info.Key)
	assert.Equal(t, int64(len("%PDF-1.4 body")), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)

	rc, gotInfo, err := store.Get(ctx, "doc.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4 body", string(data))
	assert.Equal(t, info.Size, gotInfo.Size)

	require.NoError(t, store.Delete(ctx, "doc.pdf"))
	_, statErr := os.Stat(filepath.Join(dir, "doc.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalPutRefusesOverwrite(t *testing.T) {
	store, _ := newLocalFixture(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "doc.pdf", strings.NewReader("first"), PutObjectOptions{})
	require.NoError(t, err)

	_, err = store.Put(ctx, "doc.pdf", strings.NewReader("second"), PutObjectOptions{})
	assert.Error(t, err)

	// The original content is untouched.
	rc, _, err := store.Get(ctx, "doc.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store, _ := newLocalFixture(t)
	ctx := context.Background()

	keys := []string{
		"",
		"../outside.pdf",
		"a/b.pdf",
		"..",
		".hidden.pdf",
		"./doc.pdf/../../../etc/passwd",
	}
	for _, key := range keys {
		t.Run("key "+key, func(t *testing.T) {
			_, err := store.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{})
			assert.Error(t, err, "Put accepted key %q", key)

			_, _, err = store.Get(ctx, key)
			assert.Error(t, err, "Get accepted key %q", key)
		})
	}
}

func TestLocalDeleteMissingIsNoop(t *testing.T) {
	store, _ := newLocalFixture(t)

	assert.NoError(t, store.Delete(context.Background(), "never-existed.pdf"))
}

func TestLocalGetMissing(t *testing.T) {
	store, _ := newLocalFixture(t)

	_, _, err := store.Get(context.Background(), "missing.pdf")
	assert.Error(t, err)
}
