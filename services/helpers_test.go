package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"github.com/yashrajoria/lezzetli-admin/sender"
)

var (
	adminID  = auth.Identity{SubjectID: "a1", Role: auth.RoleAdmin, ScopeKey: "a1"}
	companyA = auth.Identity{SubjectID: "cA", Role: auth.RoleCompany, ScopeKey: "cA"}
	companyB = auth.Identity{SubjectID: "cB", Role: auth.RoleCompany, ScopeKey: "cB"}
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 10, 0, 0, 0, time.UTC)
}

// --- Store wrappers ---

// failingStore fails Get for one collection with err.
type failingStore struct {
	repository.Store
	collection string
	err        error
}

func (f *failingStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	if collection == f.collection {
		return nil, f.err
	}
	return f.Store.Get(ctx, collection, id)
}

// countingStore tracks Get calls and the peak number in flight.
type countingStore struct {
	repository.Store
	delay    time.Duration
	calls    int64
	inFlight int64
	peak     int64
}

func (c *countingStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	atomic.AddInt64(&c.calls, 1)
	n := atomic.AddInt64(&c.inFlight, 1)
	defer atomic.AddInt64(&c.inFlight, -1)
	for {
		p := atomic.LoadInt64(&c.peak)
		if n <= p || atomic.CompareAndSwapInt64(&c.peak, p, n) {
			break
		}
	}
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.Store.Get(ctx, collection, id)
}

var errStoreDown = errors.New("dynamodb: connection reset")

// --- Collaborator fakes ---

type publishedEvent struct {
	Type    string
	Payload map[string]interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, payload map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return p.err
}

type fakeObjects struct {
	keys []string
	err  error
}

func (o *fakeObjects) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	o.keys = append(o.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeMailer struct {
	sent []sender.WelcomeEmail
	err  error
}

func (m *fakeMailer) SendWelcome(_ context.Context, w sender.WelcomeEmail) error {
	m.sent = append(m.sent, w)
	return m.err
}

type fakeCounter struct {
	names []string
}

func (c *fakeCounter) RecordCount(_ context.Context, name string, _ map[string]string) error {
	c.names = append(c.names, name)
	return nil
}

// plainHasher avoids bcrypt cost in tests.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(hash, p string) error {
	if hash != "hashed:"+p {
		return auth.ErrPasswordMismatch
	}
	return nil
}

// orderFixture seeds orders with their references for the pipeline tests.
func orderFixture() *repository.MemoryStore {
	s := repository.NewMemoryStore()
	s.Seed(models.CollectionCompanies,
		models.Document{"id": "cA", "name": "Alpha", "email": "alpha@test", "password": "hashed:pw"},
		models.Document{"id": "cB", "name": "Beta", "email": "beta@test"},
	)
	s.Seed(models.CollectionUsers,
		models.Document{"id": "u1", "name": "Ayla", "companyId": "cA"},
	)
	s.Seed(models.CollectionMenus,
		models.Document{"id": "m1", "companyId": "cA", "type": "daily"},
	)
	s.Seed(models.CollectionMenuItems,
		models.Document{"id": "i1", "name": "Lentil soup", "price": 4.5, "companyId": "cA"},
		models.Document{"id": "i2", "name": "Pide", "price": 9.0, "companyId": "cA"},
	)
	s.Seed(models.CollectionOrders,
		models.Document{
			"id": "o1", "companyId": "cA", "userId": "u1", "menuId": "m1",
			"items":     []interface{}{map[string]interface{}{"itemId": "i1", "quantity": 2}},
			"status":    "pending",
			"createdAt": day(1),
		},
		models.Document{"id": "o2", "companyId": "cB", "status": "pending", "createdAt": day(2)},
		models.Document{
			"id": "o3", "companyId": "cA", "userId": "missing-user",
			"items": []interface{}{
				map[string]interface{}{"itemId": "i2", "quantity": 1},
				map[string]interface{}{"itemId": "gone", "quantity": 7},
				map[string]interface{}{"itemId": "i1", "quantity": 3},
			},
			"createdAt": day(3),
		},
	)
	return s
}
