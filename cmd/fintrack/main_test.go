package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCategoriesListWithSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fintrack.db")

	out, err := run(t, "migrate", "--db", db, "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 3")

	out, err = run(t, "categories", "seed", "--db", db, "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "default categories present")

	out, err = run(t, "categories", "list", "--user", "alice", "--db", db, "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "Utilities")
}

func TestReportOnEmptyLedger(t *testing.T) {
	out, err := run(t, "report", "monthly", "2024", "2", "--user", "alice", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-02-01 .. 2024-02-29")
	assert.Contains(t, out, "Net savings")
	assert.Contains(t, out, "0.00")
}

func TestReadCommandsRequireUser(t *testing.T) {
	_, err := run(t, "goals", "list", "--backend", "memory")
	assert.Error(t, err)

	_, err = run(t, "transactions", "list", "--user", "  ", "--backend", "memory")
	assert.Error(t, err)
}

func TestInvalidFlagsFailValidation(t *testing.T) {
	_, err := run(t, "categories", "seed", "--backend", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend")

	_, err = run(t, "report", "monthly", "2024", "13", "--user", "alice", "--backend", "memory")
	assert.Error(t, err)
}

func TestMigrateNeedsSQLite(t *testing.T) {
	_, err := run(t, "migrate", "--backend", "memory")
	assert.Error(t, err)
}
