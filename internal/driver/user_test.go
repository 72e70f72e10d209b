package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/adapters/memory"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

// countingStore envuelve un store y cuenta llamadas por operación.
type countingStore struct {
	docstore.Store
	gets, updates, sets int
	collections         []string
	failWith            error
}

func (s *countingStore) Collection(name string) docstore.Collection {
	s.collections = append(s.collections, name)
	return &countingCollection{s: s, inner: s.Store.Collection(name)}
}

type countingCollection struct {
	s     *countingStore
	inner docstore.Collection
}

func (c *countingCollection) Get(ctx context.Context, key string) (*docstore.Snapshot, error) {
	c.s.gets++
	if c.s.failWith != nil {
		return nil, c.s.failWith
	}
	return c.inner.Get(ctx, key)
}

func (c *countingCollection) Update(ctx context.Context, key string, fields docstore.Document) error {
	c.s.updates++
	if c.s.failWith != nil {
		return c.s.failWith
	}
	return c.inner.Update(ctx, key, fields)
}

func (c *countingCollection) Set(ctx context.Context, key string, doc docstore.Document) error {
	c.s.sets++
	return c.inner.Set(ctx, key, doc)
}

func newDriver(t *testing.T) (*UserDriver, *countingStore) {
	t.Helper()
	cs := &countingStore{Store: memory.New()}
	t.Cleanup(func() { _ = cs.Close() })
	return NewUserDriver(cs), cs
}

func seed(t *testing.T, s docstore.Store, key string, doc docstore.Document) {
	t.Helper()
	require.NoError(t, s.Collection(repository.UserCollection).Set(context.Background(), key, doc))
}

func TestUserDriver_FindExisting(t *testing.T) {
	d, cs := newDriver(t)
	seed(t, cs.Store, "u1", docstore.Document{"uid": "u1", "email": "a@x.com"})

	rec, err := d.Find(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, repository.UserRecord{UID: "u1", Email: "a@x.com"}, *rec)
	assert.Equal(t, 1, cs.gets)
	assert.Zero(t, cs.updates)
	assert.Equal(t, []string{"user"}, cs.collections)
}

func TestUserDriver_FindMissing(t *testing.T) {
	d, cs := newDriver(t)
	rec, err := d.Find(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 1, cs.gets)
}

func TestUserDriver_FindUsesKeyWhenPayloadHasNoUID(t *testing.T) {
	d, cs := newDriver(t)
	seed(t, cs.Store, "u7", docstore.Document{"email": "seven@x.com"})

	rec, err := d.Find(context.Background(), "u7")
	require.NoError(t, err)
	assert.Equal(t, "u7", rec.UID)
	assert.Equal(t, "seven@x.com", rec.Email)
}

func TestUserDriver_FindInvalidRecord(t *testing.T) {
	d, cs := newDriver(t)
	seed(t, cs.Store, "noemail", docstore.Document{"uid": "noemail"})
	seed(t, cs.Store, "numemail", docstore.Document{"email": 42})

	_, err := d.Find(context.Background(), "noemail")
	require.ErrorIs(t, err, repository.ErrInvalidRecord)
	_, err = d.Find(context.Background(), "numemail")
	require.True(t, repository.IsInvalidRecord(err))
}

func TestUserDriver_FindEmptyEmailIsValid(t *testing.T) {
	d, cs := newDriver(t)
	seed(t, cs.Store, "u1", docstore.Document{"uid": "u1", "email": ""})

	rec, err := d.Find(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "", rec.Email)
}

func TestUserDriver_UpdateOnlyEmail(t *testing.T) {
	d, cs := newDriver(t)
	seed(t, cs.Store, "u1", docstore.Document{"uid": "u1", "email": "a@x.com", "name": "Ann"})

	require.NoError(t, d.Update(context.Background(), "u1", "b@x.com"))
	assert.Equal(t, 1, cs.updates)
	assert.Zero(t, cs.gets)

	snap, err := cs.Store.Collection("user").Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, docstore.Document{"uid": "u1", "email": "b@x.com", "name": "Ann"}, snap.Data)
}

func TestUserDriver_UpdateMissing(t *testing.T) {
	d, cs := newDriver(t)
	err := d.Update(context.Background(), "ghost", "b@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)

	snap, err := cs.Store.Collection("user").Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
}

func TestUserDriver_StoreErrorsPassThrough(t *testing.T) {
	d, cs := newDriver(t)
	boom := errors.New("unavailable")
	cs.failWith = boom

	_, err := d.Find(context.Background(), "u1")
	assert.Same(t, boom, err)
	err = d.Update(context.Background(), "u1", "b@x.com")
	assert.Same(t, boom, err)
}

func TestUserDriver_InvalidKey(t *testing.T) {
	d, _ := newDriver(t)
	_, err := d.Find(context.Background(), "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
	err = d.Update(context.Background(), "a/b", "x@x.com")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
