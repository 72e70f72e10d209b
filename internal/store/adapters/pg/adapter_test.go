package pg

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/store/docstore"
	"github.com/dropDatabas3/docuser/internal/store/docstore/docstoretest"
)

// El contrato solo corre con una base real: DOCUSER_TEST_PG_DSN=postgres://...
func testDSN(t *testing.T) string {
	dsn := os.Getenv("DOCUSER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("DOCUSER_TEST_PG_DSN not set")
	}
	return dsn
}

// isolated envuelve el store para que cada subtest use colecciones propias.
type isolated struct {
	*Store
	prefix string
}

func (s isolated) Collection(name string) docstore.Collection {
	return s.Store.Collection(s.prefix + name)
}

func TestPostgresStore_Contract(t *testing.T) {
	dsn := testDSN(t)
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		s, err := Connect(context.Background(), docstore.PostgresConfig{DSN: dsn, MaxConns: 4})
		require.NoError(t, err)
		return isolated{Store: s, prefix: uuid.NewString()[:8] + "_"}
	})
}

func TestPostgresAdapterRegistered(t *testing.T) {
	a, ok := docstore.GetAdapter("postgres")
	require.True(t, ok)
	require.Equal(t, "postgres", a.Name())
}

func TestPostgresAdapterConnectRequiresDSN(t *testing.T) {
	_, err := docstore.Open(context.Background(), docstore.Config{Name: "postgres"})
	require.Error(t, err)
}
