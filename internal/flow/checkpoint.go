package flow

import "sync"

// checkpointKey is the session-scoped slot the wizard state survives the final
// redirect under. It is cleared on successful completion.
const checkpointKey = "auth_wizard_state"

// Checkpoint is the state snapshot saved around the final redirect. UserID is
// included so a resumed wizard can still confirm a player assignment.
type Checkpoint struct {
	Stage    Stage
	Identity Identity
	UserID   string
}

// CheckpointStore persists the single wizard checkpoint. Implementations are
// session-scoped (browser sessionStorage, server session) and hold at most one
// snapshot.
type CheckpointStore interface {
	Save(cp Checkpoint) error
	// Load returns the snapshot and true, or ok false when none is saved.
	Load() (Checkpoint, bool)
	Clear() error
}

// MemoryCheckpointStore is an in-process CheckpointStore.
type MemoryCheckpointStore struct {
	mu sync.Mutex
	m  map[string]Checkpoint
}

// NewMemoryCheckpointStore returns an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{m: make(map[string]Checkpoint)}
}

func (s *MemoryCheckpointStore) Save(cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[checkpointKey] = cp
	return nil
}

func (s *MemoryCheckpointStore) Load() (Checkpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.m[checkpointKey]
	return cp, ok
}

func (s *MemoryCheckpointStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, checkpointKey)
	return nil
}
