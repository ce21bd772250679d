package repository

import (
	"context"
	"sync"

	"github.com/coachhub/coachapi/internal/domain"
)

// MockAuditRepository is an in-memory AuditRepository for tests.
type MockAuditRepository struct {
	mu      sync.Mutex
	entries []*domain.AccessAudit

	// RecordErrs are returned, in order, by successive Record calls before
	// falling back to success.
	RecordErrs []error
	calls      int
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Record(_ context.Context, e *domain.AccessAudit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.RecordErrs) > 0 {
		err := m.RecordErrs[0]
		m.RecordErrs = m.RecordErrs[1:]
		if err != nil {
			return err
		}
	}
	clone := *e
	m.entries = append(m.entries, &clone)
	return nil
}

func (m *MockAuditRepository) ListByResource(_ context.Context, resourceID string, limit int) ([]*domain.AccessAudit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AccessAudit
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].ResourceID == resourceID {
			clone := *m.entries[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

// Entries returns a snapshot of everything recorded.
func (m *MockAuditRepository) Entries() []domain.AccessAudit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AccessAudit, len(m.entries))
	for i, e := range m.entries {
		out[i] = *e
	}
	return out
}

// Calls returns how many times Record was invoked.
func (m *MockAuditRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
