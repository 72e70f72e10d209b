// Package all registra todos los adapters de docstore disponibles.
// Importar con blank import desde el composition root.
package all

import (
	_ "github.com/dropDatabas3/docuser/internal/store/adapters/firestore"
	_ "github.com/dropDatabas3/docuser/internal/store/adapters/fs"
	_ "github.com/dropDatabas3/docuser/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/docuser/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/docuser/internal/store/adapters/raft"
	_ "github.com/dropDatabas3/docuser/internal/store/adapters/redis"
	_ "github.com/dropDatabas3/docuser/internal/store/adapters/sqlite"
)
