package services

import (
	"context"

	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"golang.org/x/sync/errgroup"
)

// RecentLimit is how many recent records each dashboard panel shows.
const RecentLimit = 5

type DashboardService interface {
	Summary(ctx context.Context, id auth.Identity) (models.Dashboard, error)
}

type dashboardServiceImpl struct {
	store repository.Store
}

func NewDashboardService(store repository.Store) DashboardService {
	return &dashboardServiceImpl{store: store}
}

// Summary counts couples, guests, bookings and events within the caller's
// scope and lists the most recent couples, guests and events. The four
// collections are fetched concurrently, once each.
func (s *dashboardServiceImpl) Summary(ctx context.Context, id auth.Identity) (models.Dashboard, error) {
	var (
		couples  []models.Couple
		guests   []models.Guest
		events   []models.Event
		bookings []models.Document
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return queryInto(gctx, s.store, repository.BuildQuery(models.CollectionCouples, id), &couples)
	})
	g.Go(func() error {
		return queryInto(gctx, s.store, repository.BuildQuery(models.CollectionGuests, id), &guests)
	})
	g.Go(func() error {
		return queryInto(gctx, s.store, repository.BuildQuery(models.CollectionEvents, id), &events)
	})
	g.Go(func() error {
		docs, err := s.store.Query(gctx, repository.BuildQuery(models.CollectionBookings, id))
		if err != nil {
			return storeError(err)
		}
		bookings = docs
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Dashboard{}, err
	}

	d := models.Dashboard{
		Counts: models.DashboardCounts{
			Couples:  len(couples),
			Guests:   len(guests),
			Bookings: len(bookings),
			Events:   len(events),
		},
	}

	sortNewestFirst(couples, func(c models.Couple) models.Timestamp { return c.CreatedAt })
	sortNewestFirst(guests, func(g models.Guest) models.Timestamp { return g.CreatedAt })
	sortNewestFirst(events, func(e models.Event) models.Timestamp { return e.CreatedAt })

	d.RecentCouples = firstN(couples, RecentLimit)
	d.RecentGuests = firstN(guests, RecentLimit)
	d.RecentEvents = firstN(events, RecentLimit)
	return d, nil
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
