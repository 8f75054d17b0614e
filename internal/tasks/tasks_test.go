package tasks

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskhold/internal/models"
	"github.com/tgienger/taskhold/internal/session"
	"github.com/tgienger/taskhold/internal/storage"
)

func newTestStores(t *testing.T) (*Store, *session.Store, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "taskhold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sess := session.NewStore(db, db, zerolog.Nop())
	sess.Bootstrap()
	return NewStore(db, sess, zerolog.Nop()), sess, db
}

func loginDemo(t *testing.T, sess *session.Store) {
	t.Helper()
	_, err := sess.Login("john@example.com", "password")
	require.NoError(t, err)
}

func newInput(title string) Input {
	due, _ := models.ParseDate("2025-01-01")
	return Input{Title: title, Priority: models.PriorityLow, DueDate: due}
}

func TestRefreshWithoutSessionClearsWorkingSet(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())
	require.NotEmpty(t, store.List())

	sess.Logout()
	require.NoError(t, store.Refresh())
	assert.Empty(t, store.List())
}

func TestRefreshSeedsDemoOwner(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)

	require.NoError(t, store.Refresh())

	list := store.List()
	require.Len(t, list, 3)
	for _, task := range list {
		assert.Equal(t, "1", task.UserID)
	}
	assert.Equal(t, "Complete React Native Tutorial", list[0].Title)
	assert.Equal(t, "Build Weekend Assignment", list[1].Title)
	assert.Equal(t, "Setup GitHub Repository", list[2].Title)
}

func TestRefreshIsIdempotent(t *testing.T) {
	store, sess, db := newTestStores(t)
	loginDemo(t, sess)

	require.NoError(t, store.Refresh())
	firstList := store.List()
	firstRaw, ok, err := db.Get("tasks_1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Refresh())
	secondRaw, ok, err := db.Get("tasks_1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, firstRaw, secondRaw)
	assert.Equal(t, firstList, store.List())
}

func TestRefreshFreshIdentityIsEmpty(t *testing.T) {
	store, sess, _ := newTestStores(t)

	_, err := sess.Register("Jane", "jane@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", sess.Current().Name)

	require.NoError(t, store.Refresh())
	assert.Empty(t, store.List())

	// Idempotent for a fresh identity too
	require.NoError(t, store.Refresh())
	assert.Empty(t, store.List())
}

func TestRefreshFailsOnMalformedRecord(t *testing.T) {
	store, sess, db := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())
	before := store.List()

	require.NoError(t, db.Set("tasks_1", "{corrupt"))

	assert.Error(t, store.Refresh())
	assert.Equal(t, before, store.List())
}

func TestCreateRequiresSession(t *testing.T) {
	store, _, _ := newTestStores(t)

	_, err := store.Create(newInput("X"))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCreatePrependsAndStamps(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())

	task, err := store.Create(Input{
		Title:     "X",
		Priority:  models.PriorityLow,
		DueDate:   mustDate(t, "2025-01-01"),
		Completed: false,
	})
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 4)
	assert.Equal(t, task.ID, list[0].ID)
	assert.Equal(t, "X", list[0].Title)
	assert.Equal(t, "1", list[0].UserID)
	assert.Equal(t, models.Today(), list[0].CreatedAt)
}

func TestCreateOrderingIsNewestFirst(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())

	t1, err := store.Create(newInput("T1"))
	require.NoError(t, err)
	t2, err := store.Create(newInput("T2"))
	require.NoError(t, err)

	list := store.List()
	assert.Equal(t, t2.ID, list[0].ID)
	assert.Equal(t, t1.ID, list[1].ID)

	// Updating T1 must not reorder
	done := true
	require.NoError(t, store.Update(t1.ID, models.Patch{Completed: &done}))
	list = store.List()
	assert.Equal(t, t2.ID, list[0].ID)
	assert.Equal(t, t1.ID, list[1].ID)
}

func TestUpdateMergesOnlyPatchedFields(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())

	before := store.List()[0]
	done := true
	require.NoError(t, store.Update(before.ID, models.Patch{Completed: &done}))

	after := store.List()[0]
	assert.True(t, after.Completed)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Description, after.Description)
	assert.Equal(t, before.Priority, after.Priority)
	assert.Equal(t, before.DueDate, after.DueDate)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, before.UserID, after.UserID)
}

func TestUpdateUnknownID(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())
	before := store.List()

	done := true
	err := store.Update("nonexistent-id", models.Patch{Completed: &done})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, store.List())
}

func TestDeleteRestoresOriginalCollection(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())
	original := store.List()

	task, err := store.Create(newInput("X"))
	require.NoError(t, err)
	require.Len(t, store.List(), 4)

	require.NoError(t, store.Delete(task.ID))
	assert.Equal(t, original, store.List())
}

func TestDeleteUnknownID(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())
	before := store.List()

	err := store.Delete("nonexistent-id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, store.List())
}

func TestPartitioningAcrossIdentities(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())

	created, err := store.Create(newInput("John's task"))
	require.NoError(t, err)

	// Switch identity; the working set follows the new owner.
	sess.Logout()
	_, err = sess.Register("Jane", "jane@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, store.Refresh())

	for _, task := range store.List() {
		assert.NotEqual(t, created.ID, task.ID)
		assert.NotEqual(t, "1", task.UserID)
	}
	assert.Empty(t, store.List())

	// Jane's mutations never leak into John's collection.
	_, err = store.Create(newInput("Jane's task"))
	require.NoError(t, err)

	sess.Logout()
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())

	list := store.List()
	require.Len(t, list, 4)
	assert.Equal(t, "John's task", list[0].Title)
	for _, task := range list {
		assert.Equal(t, "1", task.UserID)
	}
}

func TestMutationsSurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskhold.db")

	db, err := storage.Open(path)
	require.NoError(t, err)
	sess := session.NewStore(db, db, zerolog.Nop())
	sess.Bootstrap()
	store := NewStore(db, sess, zerolog.Nop())

	_, err = sess.Login("john@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, store.Refresh())
	_, err = store.Create(newInput("Persisted"))
	require.NoError(t, err)
	before := store.List()
	require.NoError(t, db.Close())

	db, err = storage.Open(path)
	require.NoError(t, err)
	defer db.Close()
	sess = session.NewStore(db, db, zerolog.Nop())
	sess.Bootstrap()
	store = NewStore(db, sess, zerolog.Nop())

	require.NoError(t, store.Refresh())
	assert.Equal(t, before, store.List())
}

func TestCounts(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())

	// Seed set has one completed task out of three
	total, completed, pending := store.Counts()
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 2, pending)
}

func TestListReturnsCopy(t *testing.T) {
	store, sess, _ := newTestStores(t)
	loginDemo(t, sess)
	require.NoError(t, store.Refresh())

	list := store.List()
	list[0].Title = "mutated"
	assert.NotEqual(t, "mutated", store.List()[0].Title)
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}
