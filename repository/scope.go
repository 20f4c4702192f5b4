package repository

import (
	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/models"
)

// ownerFields names, per collection, the field that holds the owning tenant.
// Collections not listed here are invisible to company operators.
var ownerFields = map[string]string{
	models.CollectionOrders:    "companyId",
	models.CollectionMenus:     "companyId",
	models.CollectionMenuItems: "companyId",
	models.CollectionUsers:     "companyId",
	models.CollectionCouples:   "companyId",
	models.CollectionGuests:    "companyId",
	models.CollectionBookings:  "companyId",
	models.CollectionEvents:    "companyId",
	models.CollectionCompanies: "id",
}

// credentialCollections may be searched before an identity exists.
var credentialCollections = map[string]bool{
	models.CollectionCompanies:  true,
	models.CollectionAdminUsers: true,
}

// Filter is a single equality predicate.
type Filter struct {
	Field string
	Value interface{}
}

// Query is a listing request against one collection. Its fields are
// unexported so the only ways to obtain a usable Query are BuildQuery and
// CredentialQuery; stores reject the zero value.
type Query struct {
	collection string
	filters    []Filter
	denyAll    bool
	built      bool
}

// BuildQuery returns the query that lists collection on behalf of id.
// Admins get the unfiltered collection. Company operators get the documents
// whose owner field equals their scope key. Any other identity, a company
// without a scope key, or a collection with no owner field yields a query
// that matches nothing.
func BuildQuery(collection string, id auth.Identity) Query {
	q := Query{collection: collection, built: true}
	switch {
	case id.IsAdmin():
		return q
	case id.IsCompany():
		field, ok := ownerFields[collection]
		if !ok || id.ScopeKey == "" {
			q.denyAll = true
			return q
		}
		q.filters = []Filter{{Field: field, Value: id.ScopeKey}}
		return q
	default:
		q.denyAll = true
		return q
	}
}

// CredentialQuery looks up an operator account by e-mail before any identity
// exists. Only account collections can be searched this way.
func CredentialQuery(collection, email string) Query {
	q := Query{collection: collection, built: true}
	if !credentialCollections[collection] || email == "" {
		q.denyAll = true
		return q
	}
	q.filters = []Filter{{Field: "email", Value: email}}
	return q
}

// Where narrows q with one more equality predicate. It can never widen a
// query: a query that matches nothing keeps matching nothing.
func (q Query) Where(field string, value interface{}) Query {
	out := q
	out.filters = append(append([]Filter(nil), q.filters...), Filter{Field: field, Value: value})
	return out
}

// Collection returns the target collection.
func (q Query) Collection() string { return q.collection }

// Filters returns a copy of the equality predicates.
func (q Query) Filters() []Filter { return append([]Filter(nil), q.filters...) }

// DeniesAll reports whether q can match no document.
func (q Query) DeniesAll() bool { return q.denyAll }

// Matches reports whether doc satisfies every predicate of q.
func (q Query) Matches(doc models.Document) bool {
	if q.denyAll || !q.built {
		return false
	}
	for _, f := range q.filters {
		if !equalValues(doc[f.Field], f.Value) {
			return false
		}
	}
	return true
}

// Owns reports whether id may read or modify doc from collection. It applies
// the same rule as BuildQuery to a single fetched document.
func Owns(collection string, id auth.Identity, doc models.Document) bool {
	return BuildQuery(collection, id).Matches(doc)
}

func equalValues(have, want interface{}) bool {
	if have == nil || want == nil {
		return have == nil && want == nil
	}
	if hs, ok := have.(string); ok {
		ws, ok := want.(string)
		return ok && hs == ws
	}
	if hb, ok := have.(bool); ok {
		wb, ok := want.(bool)
		return ok && hb == wb
	}
	hf, hok := toFloat(have)
	wf, wok := toFloat(want)
	return hok && wok && hf == wf
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
