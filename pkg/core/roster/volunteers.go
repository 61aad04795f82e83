package roster

import (
	"context"
	"sort"
	"sync"

	"github.com/bpamb/escala/pkg/db"
)

// VolunteerStore holds paid extra shift registrations keyed by date ("2006-01-02")
type VolunteerStore interface {
	ListVolunteers(ctx context.Context, date string) ([]db.VolunteerEntry, error)
	// AddVolunteer replaces any entry of the same person on the same date
	AddVolunteer(ctx context.Context, entry db.VolunteerEntry) error
	RemoveVolunteer(ctx context.Context, date, personID string) error
}

// MemoryVolunteerStore is an in-process VolunteerStore
type MemoryVolunteerStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]db.VolunteerEntry
}

func NewMemoryVolunteerStore() *MemoryVolunteerStore {
	return &MemoryVolunteerStore{entries: make(map[string]map[string]db.VolunteerEntry)}
}

func (s *MemoryVolunteerStore) ListVolunteers(ctx context.Context, date string) ([]db.VolunteerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPerson := s.entries[date]
	out := make([]db.VolunteerEntry, 0, len(byPerson))
	for _, e := range byPerson {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonID < out[j].PersonID })
	return out, nil
}

func (s *MemoryVolunteerStore) AddVolunteer(ctx context.Context, entry db.VolunteerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPerson, ok := s.entries[entry.Date]
	if !ok {
		byPerson = make(map[string]db.VolunteerEntry)
		s.entries[entry.Date] = byPerson
	}
	byPerson[entry.PersonID] = entry
	return nil
}

func (s *MemoryVolunteerStore) RemoveVolunteer(ctx context.Context, date, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries[date], personID)
	if len(s.entries[date]) == 0 {
		delete(s.entries, date)
	}
	return nil
}
