package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/docuser/internal/app"
	"github.com/dropDatabas3/docuser/internal/config"
)

// run ejecuta userctl contra un store fs en dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DOCUSER_STORE_DRIVER", "fs")
	t.Setenv("DOCUSER_STORE_FS_ROOT", dir)
	t.Setenv("DOCUSER_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_SeedFindUpdate(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "seed", "--uid", "u1", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1\n", out)

	out, err = run(t, dir, "find", "u1", "missing")
	require.NoError(t, err)
	assert.Equal(t, "u1 a@x.com\nmissing <not found>\n", out)

	out, err = run(t, dir, "update", "u1", "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "updated u1\n", out)

	out, err = run(t, dir, "--out", "json", "find", "u1")
	require.NoError(t, err)
	var views []userView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Equal(t, []userView{{UID: "u1", Email: "b@x.com", Found: true}}, views)
}

func TestCLI_SeedGeneratesUID(t *testing.T) {
	out, err := run(t, t.TempDir(), "seed", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 36)
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "update", "ghost", "b@x.com")
	require.ErrorContains(t, err, "does not exist")

	_, err = run(t, dir, "seed")
	require.ErrorContains(t, err, "--email")

	_, err = run(t, dir, "--out", "yaml", "find", "u1")
	require.Error(t, err)

	_, err = run(t, dir, "--driver", "postgres", "find", "u1")
	require.ErrorContains(t, err, "dsn")

	_, err = run(t, dir, "find")
	require.Error(t, err)
}

func TestOpsRouter(t *testing.T) {
	container, err := app.New(context.Background(), config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	c := &cli{app: container}
	srv := httptest.NewServer(c.opsRouter())
	t.Cleanup(srv.Close)

	for path, want := range map[string]int{
		"/healthz": http.StatusOK,
		"/readyz":  http.StatusOK,
		"/metrics": http.StatusOK,
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}

	require.NoError(t, container.Close())
	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
