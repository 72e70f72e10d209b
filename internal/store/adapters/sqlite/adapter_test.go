package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/store/docstore"
	"github.com/dropDatabas3/docuser/internal/store/docstore/docstoretest"
)

func TestSQLiteStore_Contract(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		s, err := Open(context.Background(), ":memory:")
		require.NoError(t, err)
		return s
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "docs.db")

	s, err := docstore.Open(ctx, docstore.Config{Name: "sqlite", SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, s.Collection("user").Set(ctx, "u1", docstore.Document{"uid": "u1", "email": "a@x.com"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Collection("user").Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, snap.Exists)
	require.Equal(t, "a@x.com", snap.Data["email"])
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	require.Error(t, err)
}
