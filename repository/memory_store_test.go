package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/lezzetli-admin/models"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Add(ctx, models.CollectionMenus, models.Document{"companyId": "cA", "menu_items": []interface{}{"m1"}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, models.CollectionMenus, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID())

	// Returned documents are copies.
	doc["menu_items"].([]interface{})[0] = "mutated"
	again, err := s.Get(ctx, models.CollectionMenus, id)
	require.NoError(t, err)
	assert.Equal(t, "m1", again["menu_items"].([]interface{})[0])

	require.NoError(t, s.Update(ctx, models.CollectionMenus, id, models.Document{"type": "weekly", "id": "hijack"}))
	doc, err = s.Get(ctx, models.CollectionMenus, id)
	require.NoError(t, err)
	assert.Equal(t, "weekly", doc["type"])
	assert.Equal(t, id, doc.ID())

	assert.ErrorIs(t, s.Update(ctx, models.CollectionMenus, "missing", models.Document{"type": "x"}), ErrNotFound)

	require.NoError(t, s.Delete(ctx, models.CollectionMenus, id))
	require.NoError(t, s.Delete(ctx, models.CollectionMenus, id))
	_, err = s.Get(ctx, models.CollectionMenus, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAddIsUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Seed(models.CollectionEvents,
		models.Document{"id": "e1", "title": "first"},
		models.Document{"id": "e2", "title": "second"},
	)
	_, err := s.Add(ctx, models.CollectionEvents, models.Document{"id": "e1", "title": "replaced"})
	require.NoError(t, err)

	docs, err := s.Query(ctx, BuildQuery(models.CollectionEvents, admin))
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, ids(docs))
	assert.Equal(t, "replaced", docs[0]["title"])
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := seededStore()
	_, err := s.Get(ctx, models.CollectionOrders, "o1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Query(ctx, BuildQuery(models.CollectionOrders, admin))
	assert.ErrorIs(t, err, context.Canceled)
}
