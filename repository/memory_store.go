package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/yashrajoria/lezzetli-admin/models"
)

// MemoryStore keeps collections in process memory. Documents are returned in
// insertion order and copied on the way in and out.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]map[string]models.Document
	order map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string]map[string]models.Document),
		order: make(map[string][]string),
	}
}

// Seed adds docs to collection, panicking on error. It is meant for tests
// and local fixtures.
func (m *MemoryStore) Seed(collection string, docs ...models.Document) {
	for _, d := range docs {
		if _, err := m.Add(context.Background(), collection, d); err != nil {
			panic(err)
		}
	}
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *MemoryStore) Query(ctx context.Context, q Query) ([]models.Document, error) {
	skip, err := prepare(q)
	if err != nil || skip {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Document
	for _, id := range m.order[q.collection] {
		doc := m.docs[q.collection][id]
		if q.Matches(doc) {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) Add(ctx context.Context, collection string, doc models.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stored := doc.Clone()
	if stored == nil {
		stored = models.Document{}
	}
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
	}
	stored["id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]models.Document)
	}
	if _, exists := m.docs[collection][id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	m.docs[collection][id] = stored
	return id, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields.Clone() {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection][id]; !ok {
		return nil
	}
	delete(m.docs[collection], id)
	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
