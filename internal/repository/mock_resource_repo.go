package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/coachhub/coachapi/internal/domain"
)

// MockResourceRepository is a hand-written, in-memory implementation of
// ResourceRepository used in unit tests. No mock-generation library needed.
type MockResourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*domain.Resource
	files     map[string][]*domain.ResourceFile

	// Optional error overrides, set in tests to simulate failure paths.
	CreateErr  error
	GetByIDErr error
	AddFileErr error
}

func NewMockResourceRepository() *MockResourceRepository {
	return &MockResourceRepository{
		resources: make(map[string]*domain.Resource),
		files:     make(map[string][]*domain.ResourceFile),
	}
}

func (m *MockResourceRepository) Create(_ context.Context, res *domain.Resource) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[res.ID] = cloneResource(res)
	return nil
}

func (m *MockResourceRepository) GetByID(_ context.Context, id string) (*domain.Resource, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.resources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneResource(res), nil
}

func (m *MockResourceRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.Resource, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*domain.Resource, 0, len(m.resources))
	for _, res := range m.resources {
		if f.Kind != nil && res.Kind != *f.Kind {
			continue
		}
		matched = append(matched, cloneResource(res))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start >= total {
		return []*domain.Resource{}, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *MockResourceRepository) AddFile(_ context.Context, f *domain.ResourceFile) error {
	if m.AddFileErr != nil {
		return m.AddFileErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *f
	m.files[f.ResourceID] = append(m.files[f.ResourceID], &clone)
	return nil
}

func (m *MockResourceRepository) ListFiles(_ context.Context, resourceID string) ([]*domain.ResourceFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.ResourceFile, 0, len(m.files[resourceID]))
	for _, f := range m.files[resourceID] {
		clone := *f
		clone.Data = nil
		out = append(out, &clone)
	}
	return out, nil
}

func cloneResource(res *domain.Resource) *domain.Resource {
	clone := *res
	if res.Privacy != nil {
		p := *res.Privacy
		clone.Privacy = &p
	}
	return &clone
}
