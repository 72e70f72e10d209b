package all

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func TestAllAdaptersRegistered(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"firestore", "fs", "memory", "postgres", "raft", "redis", "sqlite"},
		docstore.ListAdapters(),
	)
}
