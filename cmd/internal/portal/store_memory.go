package portal

import (
	"context"
	"sort"
	"sync"
	"time"

	"acadport/cmd/identity"
)

// MemoryRosterStore is a dev/test RosterStore. Assignments are seeded
// through Assign; dev mode starts with an empty roster.
type MemoryRosterStore struct {
	mu       sync.Mutex
	proctors map[string]bool      // proctor natural key
	roster   map[string][]Proctee // proctor natural key -> proctees
}

// NewMemoryRosterStore returns an empty roster.
func NewMemoryRosterStore() *MemoryRosterStore {
	return &MemoryRosterStore{
		proctors: make(map[string]bool),
		roster:   make(map[string][]Proctee),
	}
}

// AddProctor registers a proctor with an empty roster.
func (s *MemoryRosterStore) AddProctor(proctorID string) {
	key := identity.NormalizeNaturalKey(proctorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proctors[key] = true
}

// Assign puts a student on a proctor's roster, creating the proctor
// if needed.
func (s *MemoryRosterStore) Assign(proctorID, usn string) {
	key := identity.NormalizeNaturalKey(proctorID)
	norm := identity.NormalizeNaturalKey(usn)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.proctors[key] = true
	s.roster[key] = append(s.roster[key], Proctee{
		USN:       norm,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *MemoryRosterStore) ListProctees(ctx context.Context, proctorID string) ([]Proctee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := identity.NormalizeNaturalKey(proctorID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.proctors[key] {
		return nil, ErrProctorNotFound
	}
	out := append([]Proctee(nil), s.roster[key]...)
	sort.Slice(out, func(i, j int) bool { return out[i].USN < out[j].USN })
	return out, nil
}

func (s *MemoryRosterStore) GetProctee(ctx context.Context, proctorID, usn string) (Proctee, error) {
	if err := ctx.Err(); err != nil {
		return Proctee{}, err
	}
	key := identity.NormalizeNaturalKey(proctorID)
	norm := identity.NormalizeNaturalKey(usn)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.proctors[key] {
		return Proctee{}, ErrProctorNotFound
	}
	for _, p := range s.roster[key] {
		if p.USN == norm {
			return p, nil
		}
	}
	return Proctee{}, ErrNotAssigned
}
