package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
)

func partyFixture() *repository.MemoryStore {
	s := orderFixture()
	s.Seed(models.CollectionCouples,
		models.Document{"id": "c1", "name": "Elif & Can", "companyId": "cA", "createdAt": day(1)},
		models.Document{"id": "c2", "name": "Zeynep & Ali", "companyId": "cB", "createdAt": day(2)},
	)
	s.Seed(models.CollectionEvents,
		models.Document{
			"id": "e1", "title": "Henna night", "coupleId": "c1", "companyId": "cA", "createdAt": day(3),
			"tickets": []interface{}{
				map[string]interface{}{"id": "t-std", "name": "Standard", "price": 10.0},
				map[string]interface{}{"id": "t-vip", "name": "VIP", "price": 25.0},
			},
		},
		models.Document{"id": "e2", "title": "Wedding", "coupleId": "c1", "companyId": "cA", "createdAt": day(4)},
		models.Document{"id": "e3", "title": "Other", "coupleId": "c2", "companyId": "cB", "createdAt": day(5)},
	)
	s.Seed(models.CollectionGuests,
		models.Document{"id": "g1", "userId": "u1", "name": "Ayla", "companyId": "cA", "createdAt": day(2)},
		models.Document{"id": "g2", "userId": "u9", "name": "Deniz", "companyId": "cB", "createdAt": day(3)},
	)
	s.Seed(models.CollectionBookings,
		models.Document{
			"id": "b1", "userId": "u1", "eventId": "e1", "companyId": "cA",
			"ticketQuantities": map[string]interface{}{"t-vip": 2, "t-std": 1, "t-unknown": 4},
		},
		models.Document{"id": "b2", "userId": "u1", "eventId": "deleted-event", "companyId": "cA"},
		models.Document{"id": "b3", "userId": "u9", "eventId": "e3", "companyId": "cB"},
	)
	return s
}

func newPartyService(store repository.Store) PartyService {
	return NewPartyService(store, NewResolver(store, 4, zap.NewNop()), zap.NewNop())
}

func TestListCouplesAndGuestsScoped(t *testing.T) {
	svc := newPartyService(partyFixture())

	couples, err := svc.ListCouples(context.Background(), companyA)
	require.NoError(t, err)
	require.Len(t, couples, 1)
	assert.Equal(t, "c1", couples[0].ID)

	guests, err := svc.ListGuests(context.Background(), companyB)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "g2", guests[0].ID)

	all, err := svc.ListCouples(context.Background(), adminID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestViewCoupleListsOnlyTheirEvents(t *testing.T) {
	svc := newPartyService(partyFixture())

	view, err := svc.ViewCouple(context.Background(), adminID, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Elif & Can", view.User.Name)
	require.Len(t, view.Events, 2)
	assert.Equal(t, "e1", view.Events[0].ID)
	assert.Equal(t, "e2", view.Events[1].ID)

	view, err = svc.ViewCouple(context.Background(), adminID, "c2")
	require.NoError(t, err)
	assert.Len(t, view.Events, 1)

	_, err = svc.ViewCouple(context.Background(), companyB, "c1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestViewGuestMatchesTickets(t *testing.T) {
	svc := newPartyService(partyFixture())

	view, err := svc.ViewGuest(context.Background(), companyA, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Ayla", view.User.Name)
	require.Len(t, view.Bookings, 1, "booking of a deleted event is left out")

	b := view.Bookings[0]
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "Henna night", b.Event.Title)
	require.Len(t, b.Tickets, 2)
	assert.Equal(t, "t-std", b.Tickets[0].ID)
	assert.Equal(t, 1, b.Tickets[0].BookedQuantity)
	assert.Equal(t, "t-vip", b.Tickets[1].ID)
	assert.Equal(t, 2, b.Tickets[1].BookedQuantity)
}

func TestViewGuestWithoutUserHasNoBookings(t *testing.T) {
	store := partyFixture()
	store.Seed(models.CollectionGuests, models.Document{"id": "g3", "companyId": "cA"})
	svc := newPartyService(store)

	view, err := svc.ViewGuest(context.Background(), companyA, "g3")
	require.NoError(t, err)
	assert.NotNil(t, view.Bookings)
	assert.Empty(t, view.Bookings)
}

func TestViewEvent(t *testing.T) {
	svc := newPartyService(partyFixture())

	ev, err := svc.ViewEvent(context.Background(), companyA, "e1")
	require.NoError(t, err)
	assert.Len(t, ev.Tickets, 2)

	_, err = svc.ViewEvent(context.Background(), companyA, "e3")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	_, err = svc.ViewEvent(context.Background(), companyA, "")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSetUserStatusAndDelete(t *testing.T) {
	store := partyFixture()
	svc := newPartyService(store)

	require.NoError(t, svc.SetUserStatus(context.Background(), companyA, "u1", UserStatusSuspended))
	doc, err := store.Get(context.Background(), models.CollectionUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, UserStatusSuspended, doc["status"])

	err = svc.SetUserStatus(context.Background(), companyB, "u1", UserStatusApproved)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = svc.DeleteUser(context.Background(), companyB, "u1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	require.NoError(t, svc.DeleteUser(context.Background(), adminID, "u1"))
	_, err = store.Get(context.Background(), models.CollectionUsers, "u1")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestBookedTicketsIgnoresUnknownTickets(t *testing.T) {
	tickets := []models.Ticket{{ID: "a"}, {ID: "b"}}

	got := bookedTickets(tickets, map[string]int{"b": 3, "zz": 1})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, 3, got[0].BookedQuantity)

	assert.Equal(t, []models.BookedTicket{}, bookedTickets(tickets, nil))
}
