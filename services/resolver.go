package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/metrics"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Cardinality says whether a reference field holds one id or a list.
type Cardinality int

const (
	One Cardinality = iota
	Many
)

// RefSpec describes one reference field of a base document.
type RefSpec struct {
	Field       string
	Collection  string
	Cardinality Cardinality
	// ElementKey names the id inside each list element for Many references
	// whose elements are objects, e.g. "itemId" for order lines. Empty means
	// the elements are ids themselves.
	ElementKey string
}

// ResolvedElement is one resolved entry of a Many reference. Element is the
// original list entry, so callers can read sibling fields like quantity.
type ResolvedElement struct {
	Doc     models.Document
	Element map[string]interface{}
}

// Resolved holds the outcome of resolving one base document. A One
// reference that was absent or not found has a nil entry; a Many reference
// keeps only the elements that resolved, in their original order.
type Resolved struct {
	One  map[string]models.Document
	Many map[string][]ResolvedElement
}

// OrderRefs are the references of an order.
var OrderRefs = []RefSpec{
	{Field: "companyId", Collection: models.CollectionCompanies, Cardinality: One},
	{Field: "userId", Collection: models.CollectionUsers, Cardinality: One},
	{Field: "menuId", Collection: models.CollectionMenus, Cardinality: One},
	{Field: "items", Collection: models.CollectionMenuItems, Cardinality: Many, ElementKey: "itemId"},
}

// Resolver fetches referenced documents concurrently. At most `limit`
// lookups are in flight per call. A missing reference is not an error; any
// other store failure fails the whole call and cancels pending lookups.
type Resolver struct {
	store  repository.Store
	limit  int64
	logger *zap.Logger
}

func NewResolver(store repository.Store, limit int, logger *zap.Logger) *Resolver {
	if limit < 1 {
		limit = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, limit: int64(limit), logger: logger}
}

// Resolve resolves specs for a single base document.
func (r *Resolver) Resolve(ctx context.Context, base models.Document, specs []RefSpec) (Resolved, error) {
	return r.resolve(ctx, semaphore.NewWeighted(r.limit), base, specs)
}

// ResolveAll resolves every base and returns the results in base order.
func (r *Resolver) ResolveAll(ctx context.Context, bases []models.Document, specs []RefSpec) ([]Resolved, error) {
	out := make([]Resolved, len(bases))
	sem := semaphore.NewWeighted(r.limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(r.limit))
	for i := range bases {
		i := i
		g.Go(func() error {
			res, err := r.resolve(gctx, sem, bases[i], specs)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveIDs fetches each distinct id of collection once. Ids that do not
// exist are left out of the result.
func (r *Resolver) ResolveIDs(ctx context.Context, collection string, ids []string) (map[string]models.Document, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	docs := make([]models.Document, len(unique))
	sem := semaphore.NewWeighted(r.limit)
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range unique {
		i, id := i, id
		g.Go(func() error {
			doc, err := r.lookup(gctx, sem, collection, id)
			docs[i] = doc
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]models.Document, len(unique))
	for i, id := range unique {
		if docs[i] != nil {
			out[id] = docs[i]
		}
	}
	return out, nil
}

func (r *Resolver) resolve(ctx context.Context, sem *semaphore.Weighted, base models.Document, specs []RefSpec) (Resolved, error) {
	res := Resolved{
		One:  make(map[string]models.Document),
		Many: make(map[string][]ResolvedElement),
	}

	type slot struct {
		spec    RefSpec
		id      string
		element map[string]interface{}
		doc     models.Document
	}
	var slots []*slot
	for _, spec := range specs {
		switch spec.Cardinality {
		case One:
			res.One[spec.Field] = nil
			if id, _ := base[spec.Field].(string); id != "" {
				slots = append(slots, &slot{spec: spec, id: id})
			}
		case Many:
			res.Many[spec.Field] = []ResolvedElement{}
			for _, el := range listOf(base[spec.Field]) {
				id, element := elementID(el, spec.ElementKey)
				if id != "" {
					slots = append(slots, &slot{spec: spec, id: id, element: element})
				}
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range slots {
		s := s
		g.Go(func() error {
			doc, err := r.lookup(gctx, sem, s.spec.Collection, s.id)
			s.doc = doc
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Resolved{}, err
	}

	for _, s := range slots {
		if s.doc == nil {
			continue
		}
		if s.spec.Cardinality == One {
			res.One[s.spec.Field] = s.doc
			continue
		}
		res.Many[s.spec.Field] = append(res.Many[s.spec.Field], ResolvedElement{Doc: s.doc, Element: s.element})
	}
	return res, nil
}

// lookup holds the semaphore only around the store call. A not-found
// reference yields a nil document and no error.
func (r *Resolver) lookup(ctx context.Context, sem *semaphore.Weighted, collection, id string) (models.Document, error) {
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	doc, err := r.store.Get(ctx, collection, id)
	sem.Release(1)

	switch {
	case err == nil:
		metrics.ReferenceLookups.WithLabelValues(collection, "found").Inc()
		return doc, nil
	case errors.Is(err, repository.ErrNotFound):
		metrics.ReferenceLookups.WithLabelValues(collection, "missing").Inc()
		logger.For(ctx, r.logger).Warn("reference not found",
			zap.String("collection", collection),
			zap.String("id", id))
		return nil, nil
	default:
		metrics.ReferenceLookups.WithLabelValues(collection, "error").Inc()
		return nil, fmt.Errorf("resolve %s/%s: %w", collection, id, err)
	}
}

func listOf(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

func elementID(el interface{}, key string) (string, map[string]interface{}) {
	if key == "" {
		id, _ := el.(string)
		return id, nil
	}
	var m map[string]interface{}
	switch t := el.(type) {
	case map[string]interface{}:
		m = t
	case models.Document:
		m = t
	default:
		return "", nil
	}
	id, _ := m[key].(string)
	return id, m
}
