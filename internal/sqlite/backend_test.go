package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// setupBackend creates an attached Backend in a temporary directory that is
// detached when the test ends.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// table returns the named table or fails the test.
func table(t *testing.T, b *Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(tmpDir, DatabaseFile))
	assert.NoError(t, err, "docket.db should be created")

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "mysql"}), types.ErrBackendUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	tbl, err := b.GetTable(types.TableClients)
	require.NoError(t, err)

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "detach is idempotent")

	_, err = b.GetTable(types.TableClients)
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	_, err = tbl.Get("anything")
	assert.ErrorIs(t, err, types.ErrStoreDetached, "accessors obtained before detach stop working")
}

func TestBackend_GetTable(t *testing.T) {
	b := setupBackend(t)
	for _, name := range types.StandardTableNames {
		_, err := b.GetTable(name)
		assert.NoError(t, err, name)
	}
	_, err := b.GetTable("invoices")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestBackend_DataSurvivesReattach(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	id, err := table(t, b, types.TableClients).Set("", &types.Client{Name: "María Gómez"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()
	got, err := table(t, b2, types.TableClients).Get(id)
	require.NoError(t, err)
	assert.Equal(t, "María Gómez", got.(*types.Client).Name)
}

func TestCatalogSeeding(t *testing.T) {
	b := setupBackend(t)

	labels, err := b.Labels(types.CatalogRole)
	require.NoError(t, err)
	assert.Equal(t, "parte actora", labels[types.RoleActor])
	assert.Equal(t, "parte demandada", labels[types.RoleDefendant])

	entries, err := b.Catalog(types.CatalogCaseKind)
	require.NoError(t, err)
	require.Len(t, entries, len(types.CaseKinds))
	for i, e := range entries {
		assert.Equal(t, types.CaseKinds[i], e.Code, "entries follow ordinal order")
	}

	_, err = b.Catalog("colors")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCatalogSetLabelSurvivesReseed(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	require.NoError(t, b.SetLabel(types.CatalogRole, types.RoleActor, "parte trabajadora"))
	assert.ErrorIs(t, b.SetLabel(types.CatalogRole, "judge", "juez"), types.ErrNotFound)
	assert.ErrorIs(t, b.SetLabel(types.CatalogRole, types.RoleActor, ""), types.ErrInvalidName)
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(config))
	defer b.Detach()
	labels, err := b.Labels(types.CatalogRole)
	require.NoError(t, err)
	assert.Equal(t, "parte trabajadora", labels[types.RoleActor])
}
