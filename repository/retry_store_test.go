package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/models"
)

// flakyStore fails the first `failures` calls of every operation with err.
type flakyStore struct {
	*MemoryStore
	mu       sync.Mutex
	failures int
	err      error
	calls    int
	block    bool
}

func (f *flakyStore) fail(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if n <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	if err := f.fail(ctx); err != nil {
		return nil, err
	}
	return f.MemoryStore.Get(ctx, collection, id)
}

func (f *flakyStore) Add(ctx context.Context, collection string, doc models.Document) (string, error) {
	if err := f.fail(ctx); err != nil {
		return "", err
	}
	return f.MemoryStore.Add(ctx, collection, doc)
}

func fastPolicy(retries uint64) RetryPolicy {
	return RetryPolicy{
		Timeout:         50 * time.Millisecond,
		Retries:         retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestRetryStoreRecoversFromTransientFailure(t *testing.T) {
	inner := &flakyStore{MemoryStore: seededStore(), failures: 2, err: fmt.Errorf("%w: throttled", ErrUnavailable)}
	s := NewRetryStore(inner, fastPolicy(2))

	doc, err := s.Get(context.Background(), models.CollectionOrders, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", doc.ID())
	assert.Equal(t, 3, inner.calls)
}

func TestRetryStoreGivesUp(t *testing.T) {
	inner := &flakyStore{MemoryStore: seededStore(), failures: 10, err: fmt.Errorf("%w: throttled", ErrUnavailable)}
	s := NewRetryStore(inner, fastPolicy(2))

	_, err := s.Get(context.Background(), models.CollectionOrders, "o1")
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryStoreDoesNotRetryPermanentErrors(t *testing.T) {
	inner := &flakyStore{MemoryStore: seededStore(), failures: 10, err: errors.New("validation exception")}
	s := NewRetryStore(inner, fastPolicy(2))

	_, err := s.Get(context.Background(), models.CollectionOrders, "o1")
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
	assert.Equal(t, 1, inner.calls)
}

func TestRetryStorePassesNotFoundThrough(t *testing.T) {
	inner := &flakyStore{MemoryStore: seededStore()}
	s := NewRetryStore(inner, fastPolicy(2))

	_, err := s.Get(context.Background(), models.CollectionOrders, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, apperrors.ErrStoreUnavailable))
	assert.Equal(t, 1, inner.calls)
}

func TestRetryStoreTimesOutEachAttempt(t *testing.T) {
	inner := &flakyStore{MemoryStore: seededStore(), block: true}
	s := NewRetryStore(inner, fastPolicy(1))

	start := time.Now()
	_, err := s.Get(context.Background(), models.CollectionOrders, "o1")
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
	assert.Equal(t, 2, inner.calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetryStoreAddIsIdempotent(t *testing.T) {
	mem := NewMemoryStore()
	inner := &flakyStore{MemoryStore: mem, failures: 1, err: fmt.Errorf("%w: reset", ErrUnavailable)}
	s := NewRetryStore(inner, fastPolicy(2))

	id, err := s.Add(context.Background(), models.CollectionCompanies, models.Document{"name": "Alpha"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	docs, err := mem.Query(context.Background(), BuildQuery(models.CollectionCompanies, admin))
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids(docs))
}

func TestRetryStoreRejectsUnbuiltQuery(t *testing.T) {
	s := NewRetryStore(NewMemoryStore(), fastPolicy(2))
	_, err := s.Query(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrUnbuiltQuery)
}
