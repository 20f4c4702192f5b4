package services

import (
	"context"

	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
)

// User account statuses set by the approve and suspend actions.
const (
	UserStatusApproved  = "approved"
	UserStatusSuspended = "suspended"
)

// PartyService covers couples, guests, their events and bookings.
type PartyService interface {
	ListCouples(ctx context.Context, id auth.Identity) ([]models.Couple, error)
	ListGuests(ctx context.Context, id auth.Identity) ([]models.Guest, error)
	SetUserStatus(ctx context.Context, id auth.Identity, userID, status string) error
	DeleteUser(ctx context.Context, id auth.Identity, userID string) error
	ViewCouple(ctx context.Context, id auth.Identity, coupleID string) (models.CoupleView, error)
	ViewGuest(ctx context.Context, id auth.Identity, guestID string) (models.GuestView, error)
	ViewEvent(ctx context.Context, id auth.Identity, eventID string) (models.Event, error)
}

type partyServiceImpl struct {
	store    repository.Store
	resolver *Resolver
	logger   *zap.Logger
}

func NewPartyService(store repository.Store, resolver *Resolver, logger *zap.Logger) PartyService {
	return &partyServiceImpl{store: store, resolver: resolver, logger: logger}
}

func (s *partyServiceImpl) ListCouples(ctx context.Context, id auth.Identity) ([]models.Couple, error) {
	var out []models.Couple
	if err := queryInto(ctx, s.store, repository.BuildQuery(models.CollectionCouples, id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *partyServiceImpl) ListGuests(ctx context.Context, id auth.Identity) ([]models.Guest, error) {
	var out []models.Guest
	if err := queryInto(ctx, s.store, repository.BuildQuery(models.CollectionGuests, id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetUserStatus sets the status of an end-user account.
func (s *partyServiceImpl) SetUserStatus(ctx context.Context, id auth.Identity, userID, status string) error {
	if _, err := getScoped(ctx, s.store, models.CollectionUsers, id, userID); err != nil {
		return err
	}
	if err := s.store.Update(ctx, models.CollectionUsers, userID, models.Document{"status": status}); err != nil {
		return storeError(err)
	}
	logger.For(ctx, s.logger).Info("user status changed",
		zap.String("user_id", userID),
		zap.String("status", status),
		zap.String("by", id.SubjectID))
	return nil
}

func (s *partyServiceImpl) DeleteUser(ctx context.Context, id auth.Identity, userID string) error {
	if _, err := getScoped(ctx, s.store, models.CollectionUsers, id, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionUsers, userID); err != nil {
		return storeError(err)
	}
	return nil
}

// ViewCouple returns a couple with the events it hosts.
func (s *partyServiceImpl) ViewCouple(ctx context.Context, id auth.Identity, coupleID string) (models.CoupleView, error) {
	doc, err := getScoped(ctx, s.store, models.CollectionCouples, id, coupleID)
	if err != nil {
		return models.CoupleView{}, err
	}
	var view models.CoupleView
	if err := decode(doc, &view.User); err != nil {
		return models.CoupleView{}, err
	}

	q := repository.BuildQuery(models.CollectionEvents, id).Where("coupleId", coupleID)
	if err := queryInto(ctx, s.store, q, &view.Events); err != nil {
		return models.CoupleView{}, err
	}
	if view.Events == nil {
		view.Events = []models.Event{}
	}
	return view, nil
}

// ViewGuest returns a guest with each of their bookings, the booked event and
// the booked tickets. Bookings whose event no longer exists are left out.
func (s *partyServiceImpl) ViewGuest(ctx context.Context, id auth.Identity, guestID string) (models.GuestView, error) {
	doc, err := getScoped(ctx, s.store, models.CollectionGuests, id, guestID)
	if err != nil {
		return models.GuestView{}, err
	}
	view := models.GuestView{Bookings: []models.BookingView{}}
	if err := decode(doc, &view.User); err != nil {
		return models.GuestView{}, err
	}
	if view.User.UserID == "" {
		return view, nil
	}

	bookingDocs, err := s.store.Query(ctx, repository.BuildQuery(models.CollectionBookings, id).Where("userId", view.User.UserID))
	if err != nil {
		return models.GuestView{}, storeError(err)
	}

	refs := []RefSpec{{Field: "eventId", Collection: models.CollectionEvents, Cardinality: One}}
	resolved, err := s.resolver.ResolveAll(ctx, bookingDocs, refs)
	if err != nil {
		return models.GuestView{}, storeError(err)
	}

	for i, bdoc := range bookingDocs {
		eventDoc := resolved[i].One["eventId"]
		if eventDoc == nil {
			continue
		}
		var bv models.BookingView
		if err := decode(bdoc, &bv.Booking); err != nil {
			return models.GuestView{}, err
		}
		if err := decode(eventDoc, &bv.Event); err != nil {
			return models.GuestView{}, err
		}
		bv.Tickets = bookedTickets(bv.Event.Tickets, bv.Booking.TicketQuantities)
		view.Bookings = append(view.Bookings, bv)
	}
	return view, nil
}

func (s *partyServiceImpl) ViewEvent(ctx context.Context, id auth.Identity, eventID string) (models.Event, error) {
	doc, err := getScoped(ctx, s.store, models.CollectionEvents, id, eventID)
	if err != nil {
		return models.Event{}, err
	}
	var ev models.Event
	if err := decode(doc, &ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// bookedTickets matches booked quantities against the event's ticket types,
// in the event's ticket order. Quantities for unknown tickets are ignored.
func bookedTickets(tickets []models.Ticket, quantities map[string]int) []models.BookedTicket {
	out := []models.BookedTicket{}
	for _, t := range tickets {
		qty, ok := quantities[t.ID]
		if !ok {
			continue
		}
		out = append(out, models.BookedTicket{Ticket: t, BookedQuantity: qty})
	}
	return out
}

// queryInto runs q and decodes every result into *dst, a pointer to a slice
// of entity structs.
func queryInto[T any](ctx context.Context, store repository.Store, q repository.Query, dst *[]T) error {
	docs, err := store.Query(ctx, q)
	if err != nil {
		return storeError(err)
	}
	out := make([]T, len(docs))
	for i, doc := range docs {
		if err := decode(doc, &out[i]); err != nil {
			return err
		}
	}
	*dst = out
	return nil
}
