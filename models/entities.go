package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OrderLine is one entry of an order's items list.
type OrderLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Order is a customer order placed against a company's menu.
type Order struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"companyId,omitempty"`
	UserID        string                 `json:"userId,omitempty"`
	MenuID        string                 `json:"menuId,omitempty"`
	Items         []OrderLine            `json:"items"`
	Status        string                 `json:"status,omitempty"`
	PaymentStatus string                 `json:"payment_status,omitempty"`
	CreatedAt     Timestamp              `json:"createdAt"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}

// Company is a tenant. Its password hash is never decoded into this type.
type Company struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	CompanyCode string                 `json:"company_code"`
	Email       string                 `json:"email"`
	Phone       *string                `json:"phone"`
	Logo        *string                `json:"logo"`
	IsActive    bool                   `json:"is_active"`
	IsApproved  bool                   `json:"is_approved"`
	Role        string                 `json:"role,omitempty"`
	CreatedAt   Timestamp              `json:"createdAt"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// MenuItem is a dish a company offers. CompanyID is nil for items created by
// a platform admin.
type MenuItem struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Price       float64                `json:"price"`
	Image       *string                `json:"image"`
	CompanyID   *string                `json:"companyId"`
	CreatedAt   Timestamp              `json:"createdAt"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// Menu groups menu items for a meal service.
type Menu struct {
	ID         string                 `json:"id"`
	CompanyID  string                 `json:"companyId"`
	CutoffTime string                 `json:"cutoff_time"`
	Date       string                 `json:"date"`
	IsActive   *bool                  `json:"is_active"`
	MealType   string                 `json:"mealType"`
	MenuItems  StringList             `json:"menu_items"`
	Type       string                 `json:"type"`
	CreatedAt  Timestamp              `json:"createdAt"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// ApplyDefaults fills the display defaults for absent menu fields.
func (m *Menu) ApplyDefaults() {
	if m.IsActive == nil {
		active := true
		m.IsActive = &active
	}
	if m.MealType == "" {
		m.MealType = "lunch"
	}
	if m.MenuItems == nil {
		m.MenuItems = StringList{}
	}
	if m.Type == "" {
		m.Type = "daily"
	}
}

// User is an end customer account referenced by orders.
type User struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Status    string                 `json:"status,omitempty"`
	CompanyID string                 `json:"companyId,omitempty"`
	CreatedAt Timestamp              `json:"createdAt"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Couple is a party host account.
type Couple struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Status    string                 `json:"status,omitempty"`
	CompanyID string                 `json:"companyId,omitempty"`
	CreatedAt Timestamp              `json:"createdAt"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Guest is a party attendee. UserID links the guest to its bookings.
type Guest struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId,omitempty"`
	Name      string                 `json:"name,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Status    string                 `json:"status,omitempty"`
	CompanyID string                 `json:"companyId,omitempty"`
	CreatedAt Timestamp              `json:"createdAt"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Ticket is a ticket type offered by an event.
type Ticket struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name,omitempty"`
	Price float64                `json:"price"`
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Event is a party hosted by a couple.
type Event struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title,omitempty"`
	CoupleID  string                 `json:"coupleId,omitempty"`
	CompanyID string                 `json:"companyId,omitempty"`
	Date      string                 `json:"date,omitempty"`
	Tickets   []Ticket               `json:"tickets"`
	CreatedAt Timestamp              `json:"createdAt"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Booking reserves tickets of one event for a guest. TicketQuantities maps
// ticket id to the number booked.
type Booking struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"userId,omitempty"`
	EventID          string                 `json:"eventId,omitempty"`
	CompanyID        string                 `json:"companyId,omitempty"`
	TicketQuantities map[string]int         `json:"ticketQuantities,omitempty"`
	CreatedAt        Timestamp              `json:"createdAt"`
	Extra            map[string]interface{} `json:"extra,omitempty"`
}

// StringList decodes from either a JSON array of strings or a single string,
// the two shapes form submissions produce.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = NormalizeList([]string{s})
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// NormalizeList drops blank entries and trims whitespace.
func NormalizeList(in []string) StringList {
	out := make(StringList, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
