package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lnco/artifact-service/internal/domain"
)

// memoryStore keeps documents as raw JSON so reads decode through the same
// marshal boundary as the Firestore implementation.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

func NewMemoryStore() Store {
	return &memoryStore{data: map[string]map[string]json.RawMessage{}}
}

func (ms *memoryStore) Get(_ context.Context, collection, id string, out any) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	raw, ok := ms.data[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (ms *memoryStore) Set(_ context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.data[collection] == nil {
		ms.data[collection] = map[string]json.RawMessage{}
	}
	ms.data[collection][id] = raw
	return nil
}

func (ms *memoryStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	raw, ok := ms.data[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for path, value := range fields {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %q of %s/%s: %w", path, collection, id, err)
		}
		doc[path] = encoded
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	ms.data[collection][id] = merged
	return nil
}

func (ms *memoryStore) Delete(_ context.Context, collection, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.data[collection], id)
	return nil
}

func (ms *memoryStore) Scan(_ context.Context, collection string) ([]Snapshot, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Snapshot
	for id, raw := range ms.data[collection] {
		out = append(out, &memorySnapshot{id: id, raw: raw})
	}
	return out, nil
}

func (ms *memoryStore) Close() error { return nil }

type memorySnapshot struct {
	id  string
	raw json.RawMessage
}

func (s *memorySnapshot) ID() string { return s.id }
func (s *memorySnapshot) DataTo(out any) error {
	return json.Unmarshal(s.raw, out)
}
