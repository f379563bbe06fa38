package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryExtensionData keeps extension data in process. It backs local
// development without a database and the handler tests.
type MemoryExtensionData struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

func NewMemoryExtensionData() *MemoryExtensionData {
	return &MemoryExtensionData{values: make(map[string]json.RawMessage)}
}

func (m *MemoryExtensionData) Value(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrValueNotFound
	}
	return v, nil
}

func (m *MemoryExtensionData) Values(_ context.Context, keys []string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			values[k] = v
		}
	}
	return values, nil
}

func (m *MemoryExtensionData) SetValue(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
	return nil
}
