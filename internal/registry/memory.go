package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MemoryStore is an in-memory DistrictStore and ScoreStore. It backs
// development deployments and tests; production wires the dashboard's
// stores instead.
type MemoryStore struct {
	mu        sync.RWMutex
	districts map[string]*District
	scores    map[string]*ScoreRecord
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		districts: make(map[string]*District),
		scores:    make(map[string]*ScoreRecord),
	}
}

// AddDistrict registers or replaces a district record.
func (s *MemoryStore) AddDistrict(d *District) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.districts[d.ID] = d
}

// AddScore registers or replaces a score record.
func (s *MemoryStore) AddScore(r *ScoreRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[r.DistrictID] = r
}

func (s *MemoryStore) District(_ context.Context, id string) (*District, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.districts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

func (s *MemoryStore) Districts(_ context.Context, ids []string) (map[string]*District, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*District, len(ids))
	for _, id := range ids {
		if d, ok := s.districts[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (s *MemoryStore) Score(_ context.Context, districtID string) (*ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.scores[districtID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, districtID)
	}
	return r, nil
}

func (s *MemoryStore) AllScores(_ context.Context) ([]*ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ScoreRecord, 0, len(s.scores))
	for _, r := range s.scores {
		out = append(out, r)
	}
	return out, nil
}

// seedFile is the on-disk shape for LoadFile.
type seedFile struct {
	Districts []*District    `json:"districts"`
	Scores    []*ScoreRecord `json:"scores"`
}

// LoadFile populates the store from a JSON seed file. Used by the
// development composition root to stand rankd up without the dashboard.
func (s *MemoryStore) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range seed.Districts {
		s.districts[d.ID] = d
	}
	for _, r := range seed.Scores {
		s.scores[r.DistrictID] = r
	}
	return nil
}
