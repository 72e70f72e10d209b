// Package docstoretest contiene la batería de contrato que todo adapter de
// docstore debe pasar. Cada adapter la corre desde su propio _test.go.
package docstoretest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

// Factory abre un store vacío para un subtest. El suite lo cierra al terminar.
type Factory func(t *testing.T) docstore.Store

// Run ejecuta el contrato completo contra stores creados por open.
func Run(t *testing.T, open Factory) {
	t.Helper()

	cases := []struct {
		name string
		fn   func(t *testing.T, s docstore.Store)
	}{
		{"GetMissing", testGetMissing},
		{"SetThenGet", testSetThenGet},
		{"SetReplaces", testSetReplaces},
		{"UpdateMissingDoesNotCreate", testUpdateMissing},
		{"UpdateIsPartial", testUpdatePartial},
		{"UpdateReplacesTopLevelFields", testUpdateReplacesTopLevel},
		{"UpdateIdempotent", testUpdateIdempotent},
		{"CollectionsAreIsolated", testCollectionsIsolated},
		{"InvalidKeys", testInvalidKeys},
		{"Ping", testPing},
		{"ConcurrentUpdates", testConcurrentUpdates},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			tc.fn(t, s)
		})
	}
}

func testGetMissing(t *testing.T, s docstore.Store) {
	snap, err := s.Collection("user").Get(context.Background(), "missing")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.False(t, snap.Exists)
	assert.Nil(t, snap.Data)
}

func testSetThenGet(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"uid": "u1", "email": "a@x.com"}))

	snap, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, snap.Exists)
	assert.Equal(t, "u1", snap.Key)
	assert.Equal(t, "u1", snap.Data["uid"])
	assert.Equal(t, "a@x.com", snap.Data["email"])

	var rec repository.UserRecord
	require.NoError(t, snap.DataTo(&rec))
	assert.Equal(t, repository.UserRecord{UID: "u1", Email: "a@x.com"}, rec)
}

func testSetReplaces(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"uid": "u1", "email": "a@x.com", "extra": "x"}))
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"uid": "u1", "email": "b@x.com"}))

	snap, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", snap.Data["email"])
	_, hasExtra := snap.Data["extra"]
	assert.False(t, hasExtra)
}

func testUpdateMissing(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")

	err := col.Update(ctx, "ghost", docstore.Document{"email": "b@x.com"})
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err), "got %v", err)

	snap, err := col.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
}

// Update reemplaza cada campo top-level entero: un objeto anidado no se
// mezcla con el anterior y un nil queda guardado como null.
func testUpdateReplacesTopLevel(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{
		"email": "a@x.com",
		"nick":  "ann",
		"prefs": map[string]any{"a": 1, "b": 2},
	}))

	require.NoError(t, col.Update(ctx, "u1", docstore.Document{
		"nick":  nil,
		"prefs": map[string]any{"a": 9},
	}))

	snap, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	nick, hasNick := snap.Data["nick"]
	assert.True(t, hasNick, "nil must not delete the field")
	assert.Nil(t, nick)
	assert.Equal(t, map[string]any{"a": float64(9)}, snap.Data["prefs"])
	assert.Equal(t, "a@x.com", snap.Data["email"])
}

func testUpdatePartial(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"uid": "u1", "email": "a@x.com", "name": "Ana"}))

	require.NoError(t, col.Update(ctx, "u1", docstore.Document{"email": "b@x.com"}))

	snap, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", snap.Data["email"])
	assert.Equal(t, "u1", snap.Data["uid"])
	assert.Equal(t, "Ana", snap.Data["name"])
}

func testUpdateIdempotent(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"uid": "u1", "email": "a@x.com"}))

	require.NoError(t, col.Update(ctx, "u1", docstore.Document{"email": "b@x.com"}))
	once, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, col.Update(ctx, "u1", docstore.Document{"email": "b@x.com"}))
	twice, err := col.Get(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, once.Data, twice.Data)
}

func testCollectionsIsolated(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Collection("user").Set(ctx, "k", docstore.Document{"email": "a@x.com"}))

	snap, err := s.Collection("other").Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
}

func testInvalidKeys(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")
	for _, key := range []string{"", "  ", "a/b", "..", `a\b`} {
		_, err := col.Get(ctx, key)
		assert.True(t, repository.IsInvalidInput(err), "get %q: %v", key, err)
		err = col.Update(ctx, key, docstore.Document{"email": "x"})
		assert.True(t, repository.IsInvalidInput(err), "update %q: %v", key, err)
		err = col.Set(ctx, key, docstore.Document{"email": "x"})
		assert.True(t, repository.IsInvalidInput(err), "set %q: %v", key, err)
	}
}

func testPing(t *testing.T, s docstore.Store) {
	require.NoError(t, s.Ping(context.Background()))
	assert.NotEmpty(t, s.Name())
}

func testConcurrentUpdates(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	col := s.Collection("user")
	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"uid": "u1", "email": "a@x.com"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, col.Update(ctx, "u1", docstore.Document{"email": fmt.Sprintf("u%d@x.com", i)}))
		}(i)
	}
	wg.Wait()

	snap, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Regexp(t, `^u\d@x\.com$`, snap.Data["email"])
	assert.Equal(t, "u1", snap.Data["uid"])
}
