package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/lezzetli-admin/models"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestResolveOrderReferences(t *testing.T) {
	store := orderFixture()
	r := NewResolver(store, 4, zap.NewNop())

	base, err := store.Get(context.Background(), models.CollectionOrders, "o1")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), base, OrderRefs)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", res.One["companyId"]["name"])
	assert.Equal(t, "Ayla", res.One["userId"]["name"])
	assert.Equal(t, "m1", res.One["menuId"].ID())
	require.Len(t, res.Many["items"], 1)
	assert.Equal(t, "i1", res.Many["items"][0].Doc.ID())
	assert.Equal(t, 2, toInt(res.Many["items"][0].Element["quantity"]))
}

func TestResolveAbsentReferences(t *testing.T) {
	store := orderFixture()
	r := NewResolver(store, 4, zap.NewNop())

	base, err := store.Get(context.Background(), models.CollectionOrders, "o3")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), base, OrderRefs)
	require.NoError(t, err)
	assert.Nil(t, res.One["userId"], "missing user resolves to nil")
	assert.Nil(t, res.One["menuId"], "absent field resolves to nil without lookup")

	var got []string
	for _, el := range res.Many["items"] {
		got = append(got, el.Doc.ID())
	}
	assert.Equal(t, []string{"i2", "i1"}, got, "missing items dropped, order kept")
	assert.Equal(t, 3, toInt(res.Many["items"][1].Element["quantity"]))
}

func TestResolveEmptyBase(t *testing.T) {
	r := NewResolver(orderFixture(), 4, zap.NewNop())

	res, err := r.Resolve(context.Background(), models.Document{"id": "bare"}, OrderRefs)
	require.NoError(t, err)
	for _, field := range []string{"companyId", "userId", "menuId"} {
		v, ok := res.One[field]
		assert.True(t, ok)
		assert.Nil(t, v)
	}
	assert.NotNil(t, res.Many["items"])
	assert.Empty(t, res.Many["items"])
}

func TestResolveHardErrorCancelsAndLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &failingStore{Store: orderFixture(), collection: models.CollectionUsers, err: errStoreDown}
	r := NewResolver(store, 2, zap.NewNop())

	docs := []models.Document{
		{"id": "x1", "companyId": "cA", "userId": "u1"},
		{"id": "x2", "companyId": "cB", "userId": "u1"},
	}
	_, err := r.ResolveAll(context.Background(), docs, OrderRefs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errStoreDown))
}

func TestResolveAllBoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &countingStore{Store: orderFixture(), delay: 5 * time.Millisecond}
	r := NewResolver(store, 3, zap.NewNop())

	var bases []models.Document
	for i := 0; i < 10; i++ {
		bases = append(bases, models.Document{
			"companyId": "cA",
			"userId":    "u1",
			"items":     []interface{}{map[string]interface{}{"itemId": "i1", "quantity": 1}},
		})
	}
	res, err := r.ResolveAll(context.Background(), bases, OrderRefs)
	require.NoError(t, err)
	require.Len(t, res, 10)
	assert.Equal(t, int64(30), store.calls)
	assert.LessOrEqual(t, store.peak, int64(3))
}

func TestResolveIDsDeduplicates(t *testing.T) {
	store := &countingStore{Store: orderFixture()}
	r := NewResolver(store, 4, zap.NewNop())

	got, err := r.ResolveIDs(context.Background(), models.CollectionCompanies, []string{"cA", "cB", "cA", "", "nope"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(3), store.calls)
}
