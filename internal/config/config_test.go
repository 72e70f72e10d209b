package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "docuser.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Store.Driver)
	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, "docuser", c.App.ServiceName)
	assert.Equal(t, ":9090", c.Ops.Addr)
	assert.Equal(t, 5*time.Second, c.Store.Raft.ApplyTimeout)
	assert.Equal(t, 1.0, c.Tracing.SampleRatio)
}

func TestLoad_YAML(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
  service_name: users
store:
  driver: Redis
  redis:
    addr: localhost:6379
    db: 2
  raft:
    apply_timeout: 2s
    peers:
      n1: 127.0.0.1:7001
log:
  level: debug
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "prod", c.App.Env)
	assert.Equal(t, "redis", c.Store.Driver)
	assert.Equal(t, "localhost:6379", c.Store.Redis.Addr)
	assert.Equal(t, 2, c.Store.Redis.DB)
	assert.Equal(t, "docuser", c.Store.Redis.Prefix)
	assert.Equal(t, 2*time.Second, c.Store.Raft.ApplyTimeout)
	assert.Equal(t, map[string]string{"n1": "127.0.0.1:7001"}, c.Store.Raft.Peers)

	lc := c.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "users", lc.ServiceName)
}

func TestLoad_RelativePathsFollowYAMLDir(t *testing.T) {
	p := writeYAML(t, `
store:
  driver: sqlite
  sqlite:
    path: data/users.db
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(p), "data", "users.db"), c.Store.SQLite.Path)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	p := writeYAML(t, `
store:
  driver: fs
  fs:
    root: /var/lib/docuser
`)
	t.Setenv("DOCUSER_STORE_DRIVER", "postgres")
	t.Setenv("DOCUSER_STORE_PG_DSN", "postgres://u:p@localhost/db")
	t.Setenv("DOCUSER_STORE_PG_MAX_CONNS", "4")
	t.Setenv("DOCUSER_STORE_RAFT_PEERS", "n1=10.0.0.1:7000;n2=10.0.0.2:7000")
	t.Setenv("DOCUSER_OPS_ADDR", ":9999")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.Store.Driver)
	assert.Equal(t, "postgres://u:p@localhost/db", c.Store.Postgres.DSN)
	assert.Equal(t, 4, c.Store.Postgres.MaxConns)
	assert.Equal(t, "/var/lib/docuser", c.Store.FS.Root)
	assert.Equal(t, ":9999", c.Ops.Addr)
	assert.Equal(t, map[string]string{"n1": "10.0.0.1:7000", "n2": "10.0.0.2:7000"}, c.Store.Raft.Peers)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeYAML(t, "store: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *Config)
		ok   bool
	}{
		{"memory", func(c *Config) {}, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, false},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres" }, false},
		{"redis without addr", func(c *Config) { c.Store.Driver = "redis" }, false},
		{"firestore without project", func(c *Config) { c.Store.Driver = "firestore" }, false},
		{"sqlite without path", func(c *Config) { c.Store.Driver = "sqlite" }, false},
		{"raft without node id", func(c *Config) { c.Store.Driver = "raft" }, false},
		{"raft in memory", func(c *Config) {
			c.Store.Driver = "raft"
			c.Store.Raft.NodeID = "n1"
			c.Store.Raft.InMemory = true
		}, true},
		{"bad sample ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mut(c)
			err := c.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestToDocstore(t *testing.T) {
	c := Default()
	c.Store.Driver = "raft"
	c.Store.Raft.NodeID = "n1"
	c.Store.Raft.Peers = map[string]string{"n1": "127.0.0.1:7000"}

	dc := c.ToDocstore()
	assert.Equal(t, "raft", dc.Name)
	assert.Equal(t, "n1", dc.Raft.NodeID)
	assert.Equal(t, "127.0.0.1:7000", dc.Raft.Peers["n1"])

	dc.Raft.Peers["n2"] = "x"
	assert.NotContains(t, c.Store.Raft.Peers, "n2", "peers must be copied")
}
