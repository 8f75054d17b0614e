package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskhold/internal/models"
)

// recordKey is the durable-storage key holding the active identity.
const recordKey = "user"

var (
	// ErrInvalidCredentials is returned when login email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateIdentity is returned when the registration email is taken.
	ErrDuplicateIdentity = errors.New("email already registered")
)

// State is the session lifecycle state
type State int

const (
	// StateResolving means Bootstrap has not completed yet. Callers must
	// not act on the session until it leaves this state.
	StateResolving State = iota
	StateAnonymous
	StateAuthenticated
)

// Records is the durable key-value layer the session persists to.
type Records interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Registry is the identity registry backing login and registration.
type Registry interface {
	FindByEmail(email string) (*models.Credential, error)
	Insert(cred models.Credential) error
}

// Store owns the active-identity lifecycle and its durability.
// At most one identity is active at a time.
type Store struct {
	records  Records
	registry Registry
	log      zerolog.Logger

	mu      sync.RWMutex
	state   State
	current *models.Identity
}

// NewStore creates a session store in the Resolving state.
func NewStore(records Records, registry Registry, log zerolog.Logger) *Store {
	return &Store{
		records:  records,
		registry: registry,
		log:      log.With().Str("component", "session").Logger(),
		state:    StateResolving,
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns the active identity, or nil when anonymous or resolving.
func (s *Store) Current() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	ident := *s.current
	return &ident
}

// Bootstrap restores a previously persisted identity, if any. It never
// fails the caller: a malformed or unreadable record is logged and
// treated as no session. Runs once at startup; the Resolving state is
// terminal after this returns.
func (s *Store) Bootstrap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateAnonymous

	raw, ok, err := s.records.Get(recordKey)
	if err != nil {
		s.log.Error().Err(err).Msg("reading persisted session")
		return
	}
	if !ok {
		return
	}

	var ident models.Identity
	if err := json.Unmarshal([]byte(raw), &ident); err != nil || ident.ID == "" {
		s.log.Warn().Err(err).Msg("discarding malformed persisted session")
		return
	}

	s.current = &ident
	s.state = StateAuthenticated
}

// Login authenticates against the registry by exact email match and a
// verbatim password comparison. On success the identity becomes active
// and is persisted; on mismatch the state is untouched.
func (s *Store) Login(email, password string) (*models.Identity, error) {
	cred, err := s.registry.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("looking up identity: %w", err)
	}
	if cred == nil || cred.Password != password {
		return nil, ErrInvalidCredentials
	}

	if err := s.activate(cred.Identity); err != nil {
		return nil, err
	}
	return &cred.Identity, nil
}

// Register creates a new identity. The email must not already be
// registered. Password length is the caller's contract (the register
// screen enforces it); only uniqueness is checked here.
func (s *Store) Register(name, email, password string) (*models.Identity, error) {
	existing, err := s.registry.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("looking up identity: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateIdentity
	}

	ident := models.Identity{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: models.Today(),
	}
	if err := s.registry.Insert(models.Credential{Identity: ident, Password: password}); err != nil {
		return nil, fmt.Errorf("registering identity: %w", err)
	}

	if err := s.activate(ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// Logout clears the active identity. Always succeeds; a failure to
// remove the persisted record is logged and swallowed.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.state = StateAnonymous

	if err := s.records.Delete(recordKey); err != nil {
		s.log.Error().Err(err).Msg("removing persisted session")
	}
}

func (s *Store) activate(ident models.Identity) error {
	raw, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.Set(recordKey, string(raw)); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	s.current = &ident
	s.state = StateAuthenticated
	return nil
}
