package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskhold/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "taskhold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordsMissingKey(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.Get("user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordsSetGet(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Set("user", `{"id":"1"}`))

	value, ok, err := db.Get("user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"1"}`, value)
}

func TestRecordsSetOverwrites(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Set("tasks_1", "[]"))
	require.NoError(t, db.Set("tasks_1", `[{"id":"a"}]`))

	value, ok, err := db.Get("tasks_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, value)
}

func TestRecordsDelete(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Set("user", "x"))
	require.NoError(t, db.Delete("user"))

	_, ok, err := db.Get("user")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error
	require.NoError(t, db.Delete("user"))
}

func TestSchemaSeedsDemoIdentity(t *testing.T) {
	db := openTestDB(t)

	cred, err := db.FindByEmail("john@example.com")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "1", cred.Identity.ID)
	assert.Equal(t, "John Doe", cred.Identity.Name)
	assert.Equal(t, "password", cred.Password)
	assert.Equal(t, "2024-01-01", cred.Identity.CreatedAt.String())
}

func TestFindByEmailUnknown(t *testing.T) {
	db := openTestDB(t)

	cred, err := db.FindByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestInsertAndFindByEmail(t *testing.T) {
	db := openTestDB(t)

	created, err := models.ParseDate("2025-06-01")
	require.NoError(t, err)
	ident := models.Identity{ID: "u2", Name: "Jane", Email: "jane@x.com", CreatedAt: created}
	require.NoError(t, db.Insert(models.Credential{Identity: ident, Password: "secret1"}))

	cred, err := db.FindByEmail("jane@x.com")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, ident, cred.Identity)
	assert.Equal(t, "secret1", cred.Password)
}

func TestInsertDuplicateEmailFails(t *testing.T) {
	db := openTestDB(t)

	ident := models.Identity{ID: "u3", Name: "Dup", Email: "john@example.com", CreatedAt: models.Today()}
	assert.Error(t, db.Insert(models.Credential{Identity: ident, Password: "x"}))
}

func TestSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskhold.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Set("user", "persisted"))
	require.NoError(t, db.Close())

	// Reopening applies the schema again without clobbering data.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	value, ok, err := db.Get("user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)

	cred, err := db.FindByEmail("john@example.com")
	require.NoError(t, err)
	require.NotNil(t, cred)
}
