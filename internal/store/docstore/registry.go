package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Adapter representa un backend capaz de abrir un Store.
type Adapter interface {
	// Name retorna el nombre del adapter (ej: "postgres", "redis", "fs").
	Name() string

	// Open establece conexión con el almacenamiento.
	Open(ctx context.Context, cfg Config) (Store, error)
}

// Config configuración para abrir un Store.
// Cada adapter lee solo el bloque que le corresponde.
type Config struct {
	// Name del adapter: "memory", "fs", "sqlite", "postgres", "redis", "firestore", "raft"
	Name string

	// FSRoot directorio raíz (adapter fs)
	FSRoot string

	// SQLitePath path del archivo (adapter sqlite). ":memory:" para tests.
	SQLitePath string

	Postgres  PostgresConfig
	Redis     RedisConfig
	Firestore FirestoreConfig
	Raft      RaftConfig
}

// PostgresConfig configuración del adapter postgres.
type PostgresConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

// RedisConfig configuración del adapter redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prefijo para todas las keys
}

// FirestoreConfig configuración del adapter firestore.
type FirestoreConfig struct {
	ProjectID       string
	DatabaseID      string // vacío = "(default)"
	CredentialsFile string // vacío = ADC o emulador
}

// RaftConfig configuración del adapter raft.
type RaftConfig struct {
	NodeID       string
	Addr         string            // host:port del transporte
	Dir          string            // directorio de BoltDB + snapshots
	Peers        map[string]string // nodeID -> addr; vacío = single node
	ApplyTimeout time.Duration
	// InMemory usa stores y transporte en memoria (tests).
	InMemory bool
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("docstore: adapter %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open abre un Store usando el adapter indicado en cfg.Name.
func Open(ctx context.Context, cfg Config) (Store, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("docstore: adapter %q not registered (have %v)", cfg.Name, ListAdapters())
	}
	return a.Open(ctx, cfg)
}
