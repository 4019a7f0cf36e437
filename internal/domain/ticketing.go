package domain

import "time"

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusOnSale   EventStatus = "on_sale"
	EventStatusClosed   EventStatus = "closed"
	EventStatusUpcoming EventStatus = "upcoming"
)

// Event is a ticketed event with its headline sales figures.
type Event struct {
	ID                 int64
	Name               string
	Date               string
	Time               string
	Location           string
	TotalRevenue       string
	TotalRevenueChange string
	TicketsAvailable   int
	TicketsSold        int
	TicketsSoldChange  string
	PageViews          string
	PageViewsChange    string
	Status             EventStatus
	ImgURL             string
	ThumbURL           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TicketsRemaining returns the unsold ticket count, never negative.
func (e *Event) TicketsRemaining() int {
	if e.TicketsSold >= e.TicketsAvailable {
		return 0
	}
	return e.TicketsAvailable - e.TicketsSold
}

// Customer is the buyer on an order.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Address   string
	Country   string
	FlagURL   string
	CreatedAt time.Time
}

// Payment holds the masked card details for an order.
type Payment struct {
	CardNumber string
	CardType   string
	CardExpiry string
}

// Order is a ticket purchase with its customer, event and optional payment.
type Order struct {
	ID            int64
	Date          string
	AmountUSD     string
	AmountCAD     string
	Fee           string
	Net           string
	TransactionID string
	CustomerID    int64
	EventID       int64
	CreatedAt     time.Time

	Customer Customer
	Event    Event
	Payment  *Payment // nil when no payment was captured
}

// Country is an entry in the address form country list.
type Country struct {
	ID      int64
	Name    string
	Code    string
	FlagURL string
	Regions []string
}
