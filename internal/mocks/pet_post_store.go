package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/store"
)

// MockPetPostStore implements store.PetPostStore for testing
type MockPetPostStore struct {
	CreateFn       func(ctx context.Context, post *domain.PetPost) error
	GetByIDFn      func(ctx context.Context, id int64) (*domain.PetPost, error)
	GetForUpdateFn func(ctx context.Context, id int64) (*domain.PetPost, error)
	ListFn         func(ctx context.Context, filter domain.PetPostFilter) ([]*domain.PetPost, error)
	ListByOwnerFn  func(ctx context.Context, userID int64) ([]*domain.PetPost, error)
	UpdateFn       func(ctx context.Context, post *domain.PetPost) error
	DeleteFn       func(ctx context.Context, id int64) error

	// Now stamps CreatedAt on insert; defaults to time.Now.
	Now func() time.Time

	mu     sync.Mutex
	posts  map[int64]*domain.PetPost
	nextID int64
}

var _ store.PetPostStore = (*MockPetPostStore)(nil)

// NewMockPetPostStore creates a new mock store with an empty in-memory table
func NewMockPetPostStore() *MockPetPostStore {
	return &MockPetPostStore{posts: make(map[int64]*domain.PetPost), Now: time.Now}
}

// Seed stores post as-is, keeping its ID and CreatedAt
func (m *MockPetPostStore) Seed(post *domain.PetPost) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if post.ID > m.nextID {
		m.nextID = post.ID
	}
	stored := *post
	m.posts[post.ID] = &stored
}

// Create implements the PetPostStore interface
func (m *MockPetPostStore) Create(ctx context.Context, post *domain.PetPost) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, post)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = m.Now().UTC()
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

// GetByID implements the PetPostStore interface
func (m *MockPetPostStore) GetByID(ctx context.Context, id int64) (*domain.PetPost, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.get(id)
}

// GetForUpdate implements the PetPostStore interface
func (m *MockPetPostStore) GetForUpdate(ctx context.Context, id int64) (*domain.PetPost, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, id)
	}
	return m.get(id)
}

// List implements the PetPostStore interface
func (m *MockPetPostStore) List(ctx context.Context, filter domain.PetPostFilter) ([]*domain.PetPost, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return m.filter(func(p *domain.PetPost) bool {
		return (filter.PetType == "" || string(p.PetType) == filter.PetType) &&
			(filter.Status == "" || string(p.Status) == filter.Status)
	}), nil
}

// ListByOwner implements the PetPostStore interface
func (m *MockPetPostStore) ListByOwner(ctx context.Context, userID int64) ([]*domain.PetPost, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, userID)
	}
	return m.filter(func(p *domain.PetPost) bool { return p.UserID == userID }), nil
}

// Update implements the PetPostStore interface
func (m *MockPetPostStore) Update(ctx context.Context, post *domain.PetPost) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, post)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[post.ID]; !ok {
		return store.ErrPetPostNotFound
	}
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

// Delete implements the PetPostStore interface
func (m *MockPetPostStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return store.ErrPetPostNotFound
	}
	delete(m.posts, id)
	return nil
}

// WithTx returns the same mock; transactions are not simulated
func (m *MockPetPostStore) WithTx(tx *sql.Tx) store.PetPostStore {
	return m
}

func (m *MockPetPostStore) get(id int64) (*domain.PetPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, store.ErrPetPostNotFound
	}
	found := *p
	return &found, nil
}

// filter returns matching copies ordered newest first, like the real store.
func (m *MockPetPostStore) filter(match func(*domain.PetPost) bool) []*domain.PetPost {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.PetPost, 0, len(m.posts))
	for _, p := range m.posts {
		if match(p) {
			found := *p
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
