package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskhold/internal/models"
)

var (
	// ErrNoSession is returned when a mutating operation runs with no
	// active identity.
	ErrNoSession = errors.New("no active session")
	// ErrNotFound is returned when the task id is not in the working set.
	ErrNotFound = errors.New("task not found")
)

// Records is the durable key-value layer task collections are mirrored to.
type Records interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Sessions supplies the active identity the working set is scoped to.
type Sessions interface {
	Current() *models.Identity
}

// Input carries the caller-supplied fields for a new task. Title must be
// non-empty after trimming; that validation is the caller's contract.
type Input struct {
	Title       string
	Description string
	Priority    models.Priority
	DueDate     models.Date
	Completed   bool
}

// Store owns the in-memory working set of tasks for the active identity
// and mirrors it to one durable record per owner. Every mutation is a
// full read-modify-write of the owner's collection; the mutex is held
// across the durable write so writes against an owner are serialized and
// in-memory and durable state cannot diverge by interleaving.
type Store struct {
	records  Records
	sessions Sessions
	log      zerolog.Logger

	mu      sync.RWMutex
	owner   string
	working []models.Task

	inFlight atomic.Bool
}

// NewStore creates an empty task store bound to the given session source.
func NewStore(records Records, sessions Sessions, log zerolog.Logger) *Store {
	return &Store{
		records:  records,
		sessions: sessions,
		log:      log.With().Str("component", "tasks").Logger(),
	}
}

func recordKey(ownerID string) string {
	return "tasks_" + ownerID
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	return s.inFlight.Load()
}

// List returns a copy of the working set, newest-created first.
func (s *Store) List() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.working))
	copy(out, s.working)
	return out
}

// Counts returns total, completed and pending task counts.
func (s *Store) Counts() (total, completed, pending int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.working {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return len(s.working), completed, pending
}

// Refresh reloads the working set for the active identity. With no
// active identity the working set is cleared: tasks are never valid
// across an owner change, including the change to none. The first
// refresh for an owner seeds the collection from the bootstrap set and
// writes the seed back, so repeated refreshes are idempotent. A
// malformed durable record fails the whole refresh and leaves the
// working set untouched.
func (s *Store) Refresh() error {
	s.inFlight.Store(true)
	defer s.inFlight.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	ident := s.sessions.Current()
	if ident == nil {
		s.owner = ""
		s.working = nil
		return nil
	}

	raw, ok, err := s.records.Get(recordKey(ident.ID))
	if err != nil {
		return fmt.Errorf("reading task collection: %w", err)
	}

	if ok {
		var loaded []models.Task
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			return fmt.Errorf("decoding task collection: %w", err)
		}
		s.owner = ident.ID
		s.working = loaded
		return nil
	}

	// First use for this identity: seed and persist so the next
	// refresh reads the same collection back.
	var seeded []models.Task
	for _, t := range seedTasks {
		if t.UserID == ident.ID {
			seeded = append(seeded, t)
		}
	}
	if seeded == nil {
		seeded = []models.Task{}
	}
	if err := s.persistLocked(ident.ID, seeded); err != nil {
		return err
	}
	s.owner = ident.ID
	s.working = seeded
	s.log.Info().Str("owner", ident.ID).Int("count", len(seeded)).Msg("seeded task collection")
	return nil
}

// Create adds a new task owned by the active identity and prepends it to
// the working set.
func (s *Store) Create(in Input) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident := s.sessions.Current()
	if ident == nil {
		return nil, ErrNoSession
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   models.Today(),
		UserID:      ident.ID,
	}

	updated := append([]models.Task{task}, s.working...)
	if err := s.persistLocked(ident.ID, updated); err != nil {
		return nil, err
	}
	s.owner = ident.ID
	s.working = updated
	return &task, nil
}

// Update merges the patch over the task with the given id, preserving
// its position in the working set.
func (s *Store) Update(id string, patch models.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident := s.sessions.Current()
	if ident == nil {
		return ErrNoSession
	}

	idx := s.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}

	updated := make([]models.Task, len(s.working))
	copy(updated, s.working)
	patch.Apply(&updated[idx])

	if err := s.persistLocked(ident.ID, updated); err != nil {
		return err
	}
	s.working = updated
	return nil
}

// Delete removes the task with the given id. The relative order of the
// remaining tasks is unchanged.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident := s.sessions.Current()
	if ident == nil {
		return ErrNoSession
	}

	idx := s.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}

	updated := make([]models.Task, 0, len(s.working)-1)
	updated = append(updated, s.working[:idx]...)
	updated = append(updated, s.working[idx+1:]...)

	if err := s.persistLocked(ident.ID, updated); err != nil {
		return err
	}
	s.working = updated
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, t := range s.working {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ownerID string, collection []models.Task) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encoding task collection: %w", err)
	}
	if err := s.records.Set(recordKey(ownerID), string(raw)); err != nil {
		return fmt.Errorf("persisting task collection: %w", err)
	}
	return nil
}
