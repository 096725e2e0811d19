package texture

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory [Store]. The zero value is ready for use.
type Memory struct {
	mu   sync.RWMutex
	texs map[string]Texture
}

// Get implements [Source].
func (m *Memory) Get(ctx context.Context, id string) (Texture, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.texs[id]
	if !ok {
		return Texture{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return tex, nil
}

// Put implements [Sink]. Existing content under id is replaced.
func (m *Memory) Put(ctx context.Context, id string, data []byte, width, height int) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty texture id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.texs == nil {
		m.texs = make(map[string]Texture)
	}
	m.texs[id] = Texture{ID: id, Data: data, Width: width, Height: height}
	return id, nil
}

// Len returns the amount of stored textures.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.texs)
}
