package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/metrics"
	"github.com/yashrajoria/lezzetli-admin/models"
	"go.uber.org/zap"
)

// RetryPolicy bounds every store call.
type RetryPolicy struct {
	// Timeout applies to each attempt, not to the call as a whole.
	Timeout time.Duration
	// Retries is the number of extra attempts after a transient failure.
	Retries uint64
	// InitialInterval is the first backoff wait.
	InitialInterval time.Duration
	// MaxInterval caps the backoff wait.
	MaxInterval time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:         5 * time.Second,
		Retries:         2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// RetryStore decorates a Store with per-attempt timeouts and bounded
// exponential backoff. Only ErrUnavailable and per-attempt deadlines are
// retried. Failures other than ErrNotFound come back as
// apperrors.ErrStoreUnavailable so callers never see adapter internals.
type RetryStore struct {
	next   Store
	policy RetryPolicy
}

func NewRetryStore(next Store, policy RetryPolicy) *RetryStore {
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultRetryPolicy().Timeout
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultRetryPolicy().InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = DefaultRetryPolicy().MaxInterval
	}
	return &RetryStore{next: next, policy: policy}
}

func (r *RetryStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	var doc models.Document
	err := r.do(ctx, "get", collection, func(attemptCtx context.Context) error {
		var err error
		doc, err = r.next.Get(attemptCtx, collection, id)
		return err
	})
	return doc, err
}

func (r *RetryStore) Query(ctx context.Context, q Query) ([]models.Document, error) {
	if !q.built {
		return nil, ErrUnbuiltQuery
	}
	var docs []models.Document
	err := r.do(ctx, "query", q.collection, func(attemptCtx context.Context) error {
		var err error
		docs, err = r.next.Query(attemptCtx, q)
		return err
	})
	return docs, err
}

// Add assigns the id before the first attempt so a retried write replaces
// rather than duplicates.
func (r *RetryStore) Add(ctx context.Context, collection string, doc models.Document) (string, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = models.Document{}
	}
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}
	var id string
	err := r.do(ctx, "add", collection, func(attemptCtx context.Context) error {
		var err error
		id, err = r.next.Add(attemptCtx, collection, stored)
		return err
	})
	return id, err
}

func (r *RetryStore) Update(ctx context.Context, collection, id string, fields models.Document) error {
	return r.do(ctx, "update", collection, func(attemptCtx context.Context) error {
		return r.next.Update(attemptCtx, collection, id, fields)
	})
}

func (r *RetryStore) Delete(ctx context.Context, collection, id string) error {
	return r.do(ctx, "delete", collection, func(attemptCtx context.Context) error {
		return r.next.Delete(attemptCtx, collection, id)
	})
}

func (r *RetryStore) do(ctx context.Context, op, collection string, fn func(context.Context) error) error {
	start := time.Now()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.policy.InitialInterval
	policy.MaxInterval = r.policy.MaxInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if attempt > 1 {
			metrics.StoreRetries.WithLabelValues(op, collection).Inc()
		}
		attemptCtx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if isTransient(ctx, attemptCtx, err) {
			logger.Warn(ctx, "transient store failure",
				zap.String("operation", op),
				zap.String("collection", collection),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, r.policy.Retries), ctx))

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.StoreOperationDuration.WithLabelValues(op, collection, outcome).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrUnbuiltQuery):
		return err
	default:
		logger.Error(ctx, "store call failed", err,
			zap.String("operation", op),
			zap.String("collection", collection),
			zap.Int("attempts", attempt))
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
}

// isTransient reports whether a failed attempt is worth repeating. A deadline
// on the attempt's own context is transient; cancellation of the caller's
// context is not.
func isTransient(parent, attempt context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && errors.Is(attempt.Err(), context.DeadlineExceeded)
}
