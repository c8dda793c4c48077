package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asaidimu/go-gqlbuilder/core/document"
	"github.com/asaidimu/go-gqlbuilder/core/persisted"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersManifest = `
name: users
collection: true
parameters:
  - {name: role, value: !enum ADMIN}
columns: [id, profile.name]
filter:
  conditions:
    - {field: active, match: eq, value: true}
`

const ordersManifest = `
name: orders
columns: [id]
`

func init() {
	color.NoColor = true
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.yaml", usersManifest)

	compact := `{ users(role: ADMIN, where: { active: { eq: true } }) { items{ id, profile { name } } } }`

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "compact",
			args: []string{"render", path},
			check: func(t *testing.T, out string) {
				assert.Equal(t, compact+"\n", out)
			},
		},
		{
			name: "validated",
			args: []string{"render", "--validate", path},
			check: func(t *testing.T, out string) {
				assert.Equal(t, compact+"\n", out)
			},
		},
		{
			name: "pretty",
			args: []string{"render", "--pretty", path},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "\n")
				assert.Contains(t, out, "users(")
				assert.NoError(t, document.Validate(out))
			},
		},
		{
			name: "envelope",
			args: []string{"render", "--envelope", "--persisted", "--operation-name", "Users", path},
			check: func(t *testing.T, out string) {
				var env document.Envelope
				require.NoError(t, json.Unmarshal([]byte(out), &env))
				assert.Equal(t, compact, env.Query)
				assert.Equal(t, "Users", env.OperationName)
				require.NotNil(t, env.Extensions)
				assert.Equal(t, document.Hash(compact), env.Extensions.PersistedQuery.SHA256Hash)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "kind: subscription\nname: x\n")

	_, err := execute(t, "render", bad)
	assert.Error(t, err)

	_, err = execute(t, "render", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "render")
	assert.Error(t, err)
}

func TestRender_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.yaml", ordersManifest)
	cfg := writeFile(t, dir, "config.yaml", "render:\n  pretty: true\n")

	out, err := execute(t, "--config", cfg, "render", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  orders {\n")
	assert.NoError(t, document.Validate(out))

	_, err = execute(t, "--config", filepath.Join(dir, "absent.yaml"), "render", path)
	assert.Error(t, err)
}

func TestRender_InvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.yaml", ordersManifest)

	_, err := execute(t, "--log-level", "loud", "render", path)
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.yaml", usersManifest)

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "query users")
	assert.Contains(t, out, "fields:    5")
	assert.Contains(t, out, "depth:     4")
	assert.Contains(t, out, "arguments: 2")
}

func TestRegistryCommands(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "ops.db")
	users := writeFile(t, dir, "users.yaml", usersManifest)
	orders := writeFile(t, dir, "orders.yaml", ordersManifest)

	out, err := execute(t, "--store", store, "persist", users)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 3)
	usersHash := fields[1]
	assert.Equal(t, "users", fields[2])

	again, err := execute(t, "--store", store, "persist", "--name", "other", users)
	require.NoError(t, err)
	assert.Equal(t, out, again, "persisting the same document returns the first record")

	_, err = execute(t, "--store", store, "persist", orders)
	require.NoError(t, err)

	t.Run("lookup by hash", func(t *testing.T) {
		out, err := execute(t, "--store", store, "lookup", usersHash)
		require.NoError(t, err)
		assert.Equal(t, `{ users(role: ADMIN, where: { active: { eq: true } }) { items{ id, profile { name } } } }`+"\n", out)
	})

	t.Run("lookup by name as json", func(t *testing.T) {
		out, err := execute(t, "--store", store, "lookup", "--by-name", "--json", "orders")
		require.NoError(t, err)
		var record persisted.Record
		require.NoError(t, json.Unmarshal([]byte(out), &record))
		assert.Equal(t, "orders", record.Name)
		assert.Equal(t, "{ orders { id } }", record.Document)
	})

	t.Run("lookup missing", func(t *testing.T) {
		_, err := execute(t, "--store", store, "lookup", "nope")
		assert.ErrorIs(t, err, persisted.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "--store", store, "list")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "HASH")
		assert.Contains(t, lines[1], usersHash)

		out, err = execute(t, "--store", store, "list", "--limit", "1")
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

		out, err = execute(t, "--store", store, "list", "--kind", "mutation")
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)

		_, err = execute(t, "--store", store, "list", "--kind", "fragment")
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		out, err := execute(t, "--store", store, "delete", usersHash)
		require.NoError(t, err)
		assert.Contains(t, out, "deleted "+usersHash)

		_, err = execute(t, "--store", store, "delete", usersHash)
		assert.ErrorIs(t, err, persisted.ErrNotFound)
	})
}

func TestRegistry_EnvironmentStore(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "env.db")
	path := writeFile(t, dir, "orders.yaml", ordersManifest)
	t.Setenv("GQLBUILD_STORE_PATH", store)

	_, err := execute(t, "persist", path)
	require.NoError(t, err)

	_, err = os.Stat(store)
	assert.NoError(t, err)
}
