package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/models"
)

var (
	admin    = auth.Identity{SubjectID: "a1", Role: auth.RoleAdmin}
	companyA = auth.Identity{SubjectID: "cA", Role: auth.RoleCompany, ScopeKey: "cA"}
	companyB = auth.Identity{SubjectID: "cB", Role: auth.RoleCompany, ScopeKey: "cB"}
)

func seededStore() *MemoryStore {
	s := NewMemoryStore()
	s.Seed(models.CollectionOrders,
		models.Document{"id": "o1", "companyId": "cA", "status": "pending"},
		models.Document{"id": "o2", "companyId": "cB", "status": "pending"},
		models.Document{"id": "o3", "companyId": "cA", "status": "delivered"},
		models.Document{"id": "o4", "status": "pending"},
	)
	s.Seed(models.CollectionCompanies,
		models.Document{"id": "cA", "name": "Alpha", "email": "alpha@lezzetli.test"},
		models.Document{"id": "cB", "name": "Beta", "email": "beta@lezzetli.test"},
	)
	return s
}

func ids(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID())
	}
	return out
}

func TestBuildQueryScopes(t *testing.T) {
	ctx := context.Background()
	store := seededStore()

	tests := []struct {
		name       string
		collection string
		identity   auth.Identity
		want       []string
	}{
		{"admin sees everything", models.CollectionOrders, admin, []string{"o1", "o2", "o3", "o4"}},
		{"company sees its own orders", models.CollectionOrders, companyA, []string{"o1", "o3"}},
		{"other company", models.CollectionOrders, companyB, []string{"o2"}},
		{"company sees only its own company record", models.CollectionCompanies, companyB, []string{"cB"}},
		{"unknown role", models.CollectionOrders, auth.Identity{SubjectID: "x", Role: "superuser", ScopeKey: "cA"}, []string{}},
		{"zero identity", models.CollectionOrders, auth.Identity{}, []string{}},
		{"company without scope key", models.CollectionOrders, auth.Identity{SubjectID: "cA", Role: auth.RoleCompany}, []string{}},
		{"collection without owner field", models.CollectionAdminUsers, companyA, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.Query(ctx, BuildQuery(tt.collection, tt.identity))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(docs))
		})
	}
}

func TestWhereOnlyNarrows(t *testing.T) {
	ctx := context.Background()
	store := seededStore()

	docs, err := store.Query(ctx, BuildQuery(models.CollectionOrders, companyA).Where("status", "pending"))
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, ids(docs))

	// An operator-supplied companyId cannot widen the scope.
	docs, err = store.Query(ctx, BuildQuery(models.CollectionOrders, companyA).Where("companyId", "cB"))
	require.NoError(t, err)
	assert.Empty(t, docs)

	denied := BuildQuery(models.CollectionOrders, auth.Identity{}).Where("status", "pending")
	assert.True(t, denied.DeniesAll())
	docs, err = store.Query(ctx, denied)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestWhereDoesNotAlias(t *testing.T) {
	base := BuildQuery(models.CollectionOrders, companyA)
	a := base.Where("status", "pending")
	b := base.Where("status", "delivered")

	assert.Len(t, base.Filters(), 1)
	assert.Equal(t, "pending", a.Filters()[1].Value)
	assert.Equal(t, "delivered", b.Filters()[1].Value)
}

func TestUnbuiltQueryRejected(t *testing.T) {
	_, err := seededStore().Query(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrUnbuiltQuery)
	assert.False(t, Query{}.Matches(models.Document{}))
}

func TestCredentialQuery(t *testing.T) {
	ctx := context.Background()
	store := seededStore()

	docs, err := store.Query(ctx, CredentialQuery(models.CollectionCompanies, "beta@lezzetli.test"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cB"}, ids(docs))

	assert.True(t, CredentialQuery(models.CollectionOrders, "beta@lezzetli.test").DeniesAll())
	assert.True(t, CredentialQuery(models.CollectionCompanies, "").DeniesAll())
}

func TestOwns(t *testing.T) {
	order := models.Document{"id": "o1", "companyId": "cA"}
	assert.True(t, Owns(models.CollectionOrders, admin, order))
	assert.True(t, Owns(models.CollectionOrders, companyA, order))
	assert.False(t, Owns(models.CollectionOrders, companyB, order))
	assert.False(t, Owns(models.CollectionOrders, companyA, models.Document{"id": "o4"}))
	assert.True(t, Owns(models.CollectionCompanies, companyA, models.Document{"id": "cA"}))
}

func TestEqualValues(t *testing.T) {
	assert.True(t, equalValues(int64(3), 3.0))
	assert.True(t, equalValues(true, true))
	assert.False(t, equalValues("3", 3))
	assert.False(t, equalValues(nil, "cA"))
	assert.True(t, equalValues(nil, nil))
}
