package models

// OrderItemView is a resolved order line: the menu item plus the quantity
// ordered.
type OrderItemView struct {
	MenuItem
	Quantity int `json:"quantity"`
}

// OrderView is an order with its references resolved. The resolved fields
// shadow same-named order fields when encoded.
type OrderView struct {
	Order
	Company *Company        `json:"company"`
	User    *User           `json:"user"`
	Menu    *Menu           `json:"menu"`
	Items   []OrderItemView `json:"items"`
}

// MenuView is a menu joined with its owning company.
type MenuView struct {
	Menu
	Company *Company `json:"company"`
}

// CoupleView is a couple with the events it hosts.
type CoupleView struct {
	User   Couple  `json:"user"`
	Events []Event `json:"events"`
}

// BookedTicket is an event ticket with the quantity a booking holds.
type BookedTicket struct {
	Ticket
	BookedQuantity int `json:"bookedQuantity"`
}

// BookingView is a booking with its event and matched tickets.
type BookingView struct {
	Booking
	Event   Event          `json:"event"`
	Tickets []BookedTicket `json:"tickets"`
}

// GuestView is a guest with their bookings.
type GuestView struct {
	User     Guest         `json:"user"`
	Bookings []BookingView `json:"bookings"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

// OrderPage is one page of assembled orders.
type OrderPage struct {
	Items      []OrderView `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// Dashboard summarises party activity.
type Dashboard struct {
	Counts         DashboardCounts `json:"counts"`
	RecentCouples  []Couple        `json:"recentCouples"`
	RecentGuests   []Guest         `json:"recentGuests"`
	RecentEvents   []Event         `json:"recentEvents"`
}

// DashboardCounts are totals within the caller's scope.
type DashboardCounts struct {
	Couples  int `json:"couples"`
	Guests   int `json:"guests"`
	Bookings int `json:"bookings"`
	Events   int `json:"events"`
}

// MenuForm is the data the add/edit menu form needs.
type MenuForm struct {
	Menu      *Menu      `json:"data"`
	Items     []MenuItem `json:"items"`
	Companies []Company  `json:"companies"`
}
