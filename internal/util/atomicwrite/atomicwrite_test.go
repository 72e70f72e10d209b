package atomicwrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesDirsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "doc.json")

	require.NoError(t, WriteFile(path, []byte("one"), 0o600))
	require.NoError(t, WriteFile(path, []byte("two"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "two", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, WriteJSON(path, map[string]string{"email": "a@x.com"}, 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"email":"a@x.com"}`, string(got))
}
