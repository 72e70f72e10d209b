package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/store/docstore"
	"github.com/dropDatabas3/docuser/internal/store/docstore/docstoretest"
)

func TestFSStore_Contract(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestFSStore_Layout(t *testing.T) {
	root := t.TempDir()
	s, err := docstore.Open(context.Background(), docstore.Config{Name: "fs", FSRoot: root})
	require.NoError(t, err)

	require.NoError(t, s.Collection("user").Set(context.Background(), "u1", docstore.Document{"email": "a@x.com"}))

	b, err := os.ReadFile(filepath.Join(root, "user", "u1.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"email":"a@x.com"}`, string(b))
}

func TestFSStore_RequiresRoot(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestFSStore_CorruptDocument(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "user"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "user", "bad.json"), []byte("{"), 0o600))

	_, err = s.Collection("user").Get(context.Background(), "bad")
	require.Error(t, err)
}
