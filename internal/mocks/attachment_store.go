package mocks

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/phrazzld/findmypet-api/internal/service"
)

// MockAttachmentStore implements service.AttachmentStore in memory.
// By default it mimics the extension allow-list of the real storage.
type MockAttachmentStore struct {
	AcceptFn func(ctx context.Context, filename string, content io.Reader) (*string, error)
	RemoveFn func(ctx context.Context, ref string) error

	mu      sync.Mutex
	Files   map[string][]byte
	Removed []string
}

var _ service.AttachmentStore = (*MockAttachmentStore)(nil)

// NewMockAttachmentStore creates an empty in-memory attachment store
func NewMockAttachmentStore() *MockAttachmentStore {
	return &MockAttachmentStore{Files: make(map[string][]byte)}
}

// Accept implements the service.AttachmentStore interface
func (m *MockAttachmentStore) Accept(ctx context.Context, filename string, content io.Reader) (*string, error) {
	if m.AcceptFn != nil {
		return m.AcceptFn(ctx, filename, content)
	}

	switch strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")) {
	case "png", "jpg", "jpeg", "gif":
	default:
		return nil, nil
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "/static/uploads/mock_" + filename
	m.Files[ref] = data
	return &ref, nil
}

// Remove implements the service.AttachmentStore interface
func (m *MockAttachmentStore) Remove(ctx context.Context, ref string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, ref)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Files, ref)
	m.Removed = append(m.Removed, ref)
	return nil
}
