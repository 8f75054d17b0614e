package session

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskhold/internal/models"
	"github.com/tgienger/taskhold/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "taskhold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, db, zerolog.Nop()), db
}

func TestBootstrapWithoutPersistedSession(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, StateResolving, s.State())

	s.Bootstrap()

	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.Current())
}

func TestBootstrapRestoresPersistedSession(t *testing.T) {
	s, db := newTestStore(t)

	created, _ := models.ParseDate("2024-01-01")
	ident := models.Identity{ID: "1", Name: "John Doe", Email: "john@example.com", CreatedAt: created}
	raw, err := json.Marshal(ident)
	require.NoError(t, err)
	require.NoError(t, db.Set("user", string(raw)))

	s.Bootstrap()

	assert.Equal(t, StateAuthenticated, s.State())
	require.NotNil(t, s.Current())
	assert.Equal(t, ident, *s.Current())
}

func TestBootstrapDiscardsMalformedRecord(t *testing.T) {
	s, db := newTestStore(t)
	require.NoError(t, db.Set("user", "{not json"))

	s.Bootstrap()

	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.Current())
}

func TestLoginSucceedsAndPersists(t *testing.T) {
	s, db := newTestStore(t)
	s.Bootstrap()

	ident, err := s.Login("john@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "1", ident.ID)
	assert.Equal(t, "John Doe", ident.Name)
	assert.Equal(t, StateAuthenticated, s.State())

	raw, ok, err := db.Get("user")
	require.NoError(t, err)
	require.True(t, ok)
	var persisted models.Identity
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, *ident, persisted)
}

func TestLoginWrongPassword(t *testing.T) {
	s, db := newTestStore(t)
	s.Bootstrap()

	_, err := s.Login("john@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.Current())

	_, ok, err := db.Get("user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginUnknownEmail(t *testing.T) {
	s, _ := newTestStore(t)
	s.Bootstrap()

	_, err := s.Login("nobody@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterCreatesAndActivatesIdentity(t *testing.T) {
	s, db := newTestStore(t)
	s.Bootstrap()

	ident, err := s.Register("Jane", "jane@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, ident.ID)
	assert.NotEqual(t, "1", ident.ID)
	assert.Equal(t, "Jane", ident.Name)
	assert.Equal(t, "jane@x.com", ident.Email)
	assert.Equal(t, StateAuthenticated, s.State())

	// Identity is in the registry and can log in again
	cred, err := db.FindByEmail("jane@x.com")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "secret1", cred.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, _ := newTestStore(t)
	s.Bootstrap()

	_, err := s.Register("Other John", "john@example.com", "secret1")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.Equal(t, StateAnonymous, s.State())
}

func TestLogoutClearsStateAndRecord(t *testing.T) {
	s, db := newTestStore(t)
	s.Bootstrap()

	_, err := s.Login("john@example.com", "password")
	require.NoError(t, err)

	s.Logout()

	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.Current())

	_, ok, err := db.Get("user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskhold.db")

	db, err := storage.Open(path)
	require.NoError(t, err)
	s := NewStore(db, db, zerolog.Nop())
	s.Bootstrap()
	_, err = s.Login("john@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = storage.Open(path)
	require.NoError(t, err)
	defer db.Close()
	s = NewStore(db, db, zerolog.Nop())
	s.Bootstrap()

	assert.Equal(t, StateAuthenticated, s.State())
	require.NotNil(t, s.Current())
	assert.Equal(t, "john@example.com", s.Current().Email)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.Bootstrap()

	_, err := s.Login("john@example.com", "password")
	require.NoError(t, err)

	first := s.Current()
	first.Name = "mutated"
	assert.Equal(t, "John Doe", s.Current().Name)
}
