package firestore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/store/docstore"
	"github.com/dropDatabas3/docuser/internal/store/docstore/docstoretest"
)

// isolated da a cada subtest colecciones propias dentro del mismo emulador.
type isolated struct {
	*Store
	prefix string
}

func (s isolated) Collection(name string) docstore.Collection {
	return s.Store.Collection(s.prefix + name)
}

// El contrato corre contra el emulador: FIRESTORE_EMULATOR_HOST=localhost:8080
func TestFirestoreStore_Contract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		s, err := Connect(context.Background(), docstore.FirestoreConfig{ProjectID: "docuser-test"})
		require.NoError(t, err)
		return isolated{Store: s, prefix: uuid.NewString()[:8] + "_"}
	})
}

func TestFirestoreAdapterConnectRequiresProject(t *testing.T) {
	_, err := docstore.Open(context.Background(), docstore.Config{Name: "firestore"})
	require.Error(t, err)
}
