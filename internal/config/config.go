// Package config carga la configuración del proceso: YAML opcional,
// luego overrides por variables de entorno (prefijo DOCUSER_), luego defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/docuser/internal/observability/logger"
	"github.com/dropDatabas3/docuser/internal/observability/tracing"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

// EnvPrefix es el prefijo de todas las variables de entorno.
const EnvPrefix = "DOCUSER_"

type Config struct {
	App struct {
		// dev | staging | prod
		Env         string `yaml:"env" env:"APP_ENV"`
		ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
		Version     string `yaml:"version" env:"VERSION"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`

	Store StoreConfig `yaml:"store" envPrefix:"STORE_"`

	Tracing struct {
		Endpoint    string  `yaml:"endpoint" env:"OTLP_ENDPOINT"`
		SampleRatio float64 `yaml:"sample_ratio" env:"TRACE_SAMPLE_RATIO"`
	} `yaml:"tracing"`

	Ops struct {
		Addr string `yaml:"addr" env:"OPS_ADDR"`
	} `yaml:"ops"`
}

// StoreConfig elige el adapter y trae el bloque de cada uno.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`

	FS struct {
		Root string `yaml:"root" env:"ROOT"`
	} `yaml:"fs" envPrefix:"FS_"`

	SQLite struct {
		Path string `yaml:"path" env:"PATH"`
	} `yaml:"sqlite" envPrefix:"SQLITE_"`

	Postgres struct {
		DSN      string `yaml:"dsn" env:"DSN"`
		MaxConns int    `yaml:"max_conns" env:"MAX_CONNS"`
		MinConns int    `yaml:"min_conns" env:"MIN_CONNS"`
	} `yaml:"postgres" envPrefix:"PG_"`

	Redis struct {
		Addr     string `yaml:"addr" env:"ADDR"`
		Password string `yaml:"password" env:"PASSWORD"`
		DB       int    `yaml:"db" env:"DB"`
		Prefix   string `yaml:"prefix" env:"PREFIX"`
	} `yaml:"redis" envPrefix:"REDIS_"`

	Firestore struct {
		ProjectID       string `yaml:"project_id" env:"PROJECT_ID"`
		DatabaseID      string `yaml:"database_id" env:"DATABASE_ID"`
		CredentialsFile string `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
	} `yaml:"firestore" envPrefix:"FIRESTORE_"`

	Raft struct {
		NodeID string `yaml:"node_id" env:"NODE_ID"`
		Addr   string `yaml:"addr" env:"ADDR"`
		Dir    string `yaml:"dir" env:"DIR"`
		// nodeID -> addr. En env: "n1:10.0.0.1:7000,n2:10.0.0.2:7000" no sirve por
		// los ':' del puerto, así que se usa "n1=10.0.0.1:7000;n2=...".
		Peers        map[string]string `yaml:"peers" env:"PEERS" envSeparator:";" envKeyValSeparator:"="`
		ApplyTimeout time.Duration     `yaml:"apply_timeout" env:"APPLY_TIMEOUT"`
		InMemory     bool              `yaml:"in_memory" env:"IN_MEMORY"`
	} `yaml:"raft" envPrefix:"RAFT_"`
}

// Default retorna una configuración sin archivo: store en memoria, entorno dev.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// Load lee el YAML en path (si path es vacío se omite), aplica overrides por
// env, completa defaults y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		c.resolvePaths(filepath.Dir(path))
	}

	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.ServiceName == "" {
		c.App.ServiceName = "docuser"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Ops.Addr == "" {
		c.Ops.Addr = ":9090"
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1
	}

	s := &c.Store
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	if s.Driver == "" {
		s.Driver = "memory"
	}
	if s.FS.Root == "" {
		s.FS.Root = "./data/docuser"
	}
	if s.Postgres.MaxConns == 0 {
		s.Postgres.MaxConns = 10
	}
	if s.Redis.Prefix == "" {
		s.Redis.Prefix = "docuser"
	}
	if s.Raft.ApplyTimeout == 0 {
		s.Raft.ApplyTimeout = 5 * time.Second
	}
	if s.Raft.Dir == "" && s.Raft.NodeID != "" {
		s.Raft.Dir = filepath.Join("./data/raft", s.Raft.NodeID)
	}
	if s.Raft.Peers == nil {
		s.Raft.Peers = map[string]string{}
	}
}

// resolvePaths hace relativas al directorio del YAML las rutas de archivos.
func (c *Config) resolvePaths(base string) {
	rel := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || p == ":memory:" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Clean(filepath.Join(base, p))
	}
	c.Store.FS.Root = rel(c.Store.FS.Root)
	c.Store.SQLite.Path = rel(c.Store.SQLite.Path)
	c.Store.Raft.Dir = rel(c.Store.Raft.Dir)
	c.Store.Firestore.CredentialsFile = rel(c.Store.Firestore.CredentialsFile)
}

// Validate revisa que el bloque del driver elegido tenga lo mínimo para abrir.
func (c *Config) Validate() error {
	var errs []error
	s := c.Store
	switch s.Driver {
	case "memory":
	case "fs":
		if s.FS.Root == "" {
			errs = append(errs, errors.New("store.fs.root is required"))
		}
	case "sqlite":
		if s.SQLite.Path == "" {
			errs = append(errs, errors.New("store.sqlite.path is required"))
		}
	case "postgres":
		if s.Postgres.DSN == "" {
			errs = append(errs, errors.New("store.postgres.dsn is required"))
		}
		if s.Postgres.MinConns > s.Postgres.MaxConns {
			errs = append(errs, errors.New("store.postgres.min_conns must be <= max_conns"))
		}
	case "redis":
		if s.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required"))
		}
	case "firestore":
		if s.Firestore.ProjectID == "" {
			errs = append(errs, errors.New("store.firestore.project_id is required"))
		}
	case "raft":
		if s.Raft.NodeID == "" {
			errs = append(errs, errors.New("store.raft.node_id is required"))
		}
		if !s.Raft.InMemory && s.Raft.Addr == "" {
			errs = append(errs, errors.New("store.raft.addr is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not supported", s.Driver))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("tracing.sample_ratio must be between 0 and 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ToDocstore arma la configuración que consumen los adapters.
func (c *Config) ToDocstore() docstore.Config {
	s := c.Store
	peers := make(map[string]string, len(s.Raft.Peers))
	for k, v := range s.Raft.Peers {
		peers[k] = v
	}
	return docstore.Config{
		Name:       s.Driver,
		FSRoot:     s.FS.Root,
		SQLitePath: s.SQLite.Path,
		Postgres: docstore.PostgresConfig{
			DSN:      s.Postgres.DSN,
			MaxConns: s.Postgres.MaxConns,
			MinConns: s.Postgres.MinConns,
		},
		Redis: docstore.RedisConfig{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
			Prefix:   s.Redis.Prefix,
		},
		Firestore: docstore.FirestoreConfig{
			ProjectID:       s.Firestore.ProjectID,
			DatabaseID:      s.Firestore.DatabaseID,
			CredentialsFile: s.Firestore.CredentialsFile,
		},
		Raft: docstore.RaftConfig{
			NodeID:       s.Raft.NodeID,
			Addr:         s.Raft.Addr,
			Dir:          s.Raft.Dir,
			Peers:        peers,
			ApplyTimeout: s.Raft.ApplyTimeout,
			InMemory:     s.Raft.InMemory,
		},
	}
}

func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Env:         c.App.Env,
		Level:       c.Log.Level,
		ServiceName: c.App.ServiceName,
		Version:     c.App.Version,
	}
}

func (c *Config) TracingConfig() tracing.Config {
	return tracing.Config{
		Endpoint:    c.Tracing.Endpoint,
		ServiceName: c.App.ServiceName,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
