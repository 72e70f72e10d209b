package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/store/docstore"
	"github.com/dropDatabas3/docuser/internal/store/docstore/docstoretest"
)

func TestMemoryStore_Contract(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store { return New() })
}

func TestMemoryAdapterRegistered(t *testing.T) {
	s, err := docstore.Open(context.Background(), docstore.Config{Name: "memory"})
	require.NoError(t, err)
	require.Equal(t, "memory", s.Name())
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	col := s.Collection("user")
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"email": "a@x.com"}))

	snap, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	snap.Data["email"] = "mutated"

	again, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", again.Data["email"])
}

func TestMemoryStore_Closed(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())
	_, err := s.Collection("user").Get(context.Background(), "u1")
	require.ErrorIs(t, err, docstore.ErrClosed)
	require.ErrorIs(t, s.Ping(context.Background()), docstore.ErrClosed)
}
