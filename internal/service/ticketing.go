package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/repository"
)

const (
	// DefaultRecentOrders is the dashboard's recent order count.
	DefaultRecentOrders = 10

	// MaxRecentOrders caps ListRecentOrders.
	MaxRecentOrders = 100
)

// TicketingService is the read side of the admin console: events, orders,
// customers and the country list.
//
// IDs arrive as path strings; anything that is not a positive integer is
// reported as domain.ENOTFOUND.
type TicketingService interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	ListEventOrders(ctx context.Context, eventID string) ([]domain.Order, error)

	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)

	ListCountries(ctx context.Context) ([]domain.Country, error)
}

// TicketingQueries is the subset of *repository.Queries the service reads.
type TicketingQueries interface {
	ListEvents(ctx context.Context) ([]repository.Event, error)
	GetEvent(ctx context.Context, id int64) (repository.Event, error)
	ListOrders(ctx context.Context) ([]repository.OrderDetail, error)
	ListRecentOrders(ctx context.Context, limit int32) ([]repository.OrderDetail, error)
	ListEventOrders(ctx context.Context, eventID int64) ([]repository.OrderDetail, error)
	GetOrder(ctx context.Context, id int64) (repository.OrderDetail, error)
	GetCustomer(ctx context.Context, id int64) (repository.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (repository.Customer, error)
	ListCountries(ctx context.Context) ([]repository.Country, error)
}

type ticketingService struct {
	queries TicketingQueries
	logger  *slog.Logger
}

// NewTicketingService creates a new TicketingService.
func NewTicketingService(queries TicketingQueries, logger *slog.Logger) TicketingService {
	return &ticketingService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Events
// =============================================================================

func (s *ticketingService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const op = "TicketingService.ListEvents"

	rows, err := s.queries.ListEvents(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list events")
	}

	events := make([]domain.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, repoEventToDomain(r))
	}
	return events, nil
}

func (s *ticketingService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	const op = "TicketingService.GetEvent"

	eventID, ok := parseID(id)
	if !ok {
		return nil, domain.NotFound(op, "event", id)
	}

	row, err := s.queries.GetEvent(ctx, eventID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "event", id)
		}
		return nil, domain.Internal(err, op, "Failed to retrieve event")
	}

	event := repoEventToDomain(row)
	return &event, nil
}

func (s *ticketingService) ListEventOrders(ctx context.Context, eventID string) ([]domain.Order, error) {
	const op = "TicketingService.ListEventOrders"

	id, ok := parseID(eventID)
	if !ok {
		return nil, domain.NotFound(op, "event", eventID)
	}

	rows, err := s.queries.ListEventOrders(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list event orders")
	}
	return repoOrdersToDomain(rows), nil
}

// =============================================================================
// Orders
// =============================================================================

func (s *ticketingService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	const op = "TicketingService.ListOrders"

	rows, err := s.queries.ListOrders(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list orders")
	}
	return repoOrdersToDomain(rows), nil
}

// ListRecentOrders returns the newest orders. A non-positive limit means
// DefaultRecentOrders; larger values are capped at MaxRecentOrders.
func (s *ticketingService) ListRecentOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	const op = "TicketingService.ListRecentOrders"

	if limit <= 0 {
		limit = DefaultRecentOrders
	}
	if limit > MaxRecentOrders {
		limit = MaxRecentOrders
	}

	rows, err := s.queries.ListRecentOrders(ctx, int32(limit))
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list recent orders")
	}
	return repoOrdersToDomain(rows), nil
}

func (s *ticketingService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	const op = "TicketingService.GetOrder"

	orderID, ok := parseID(id)
	if !ok {
		return nil, domain.NotFound(op, "order", id)
	}

	row, err := s.queries.GetOrder(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "order", id)
		}
		return nil, domain.Internal(err, op, "Failed to retrieve order")
	}

	order := repoOrderToDomain(row)
	return &order, nil
}

// =============================================================================
// Customers and countries
// =============================================================================

func (s *ticketingService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	const op = "TicketingService.GetCustomer"

	customerID, ok := parseID(id)
	if !ok {
		return nil, domain.NotFound(op, "customer", id)
	}

	row, err := s.queries.GetCustomer(ctx, customerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "customer", id)
		}
		return nil, domain.Internal(err, op, "Failed to retrieve customer")
	}

	c := repoCustomerToDomain(row)
	return &c, nil
}

func (s *ticketingService) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const op = "TicketingService.GetCustomerByEmail"

	row, err := s.queries.GetCustomerByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.Errorf(domain.ENOTFOUND, op, "customer not found")
		}
		return nil, domain.Internal(err, op, "Failed to retrieve customer")
	}

	c := repoCustomerToDomain(row)
	return &c, nil
}

func (s *ticketingService) ListCountries(ctx context.Context) ([]domain.Country, error) {
	const op = "TicketingService.ListCountries"

	rows, err := s.queries.ListCountries(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list countries")
	}

	countries := make([]domain.Country, 0, len(rows))
	for _, r := range rows {
		countries = append(countries, domain.Country{
			ID:      r.ID,
			Name:    r.Name,
			Code:    r.Code,
			FlagURL: r.FlagUrl,
			Regions: r.Regions,
		})
	}
	return countries, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func repoEventToDomain(e repository.Event) domain.Event {
	return domain.Event{
		ID:                 e.ID,
		Name:               e.Name,
		Date:               e.Date,
		Time:               e.Time,
		Location:           e.Location,
		TotalRevenue:       e.TotalRevenue,
		TotalRevenueChange: e.TotalRevenueChange,
		TicketsAvailable:   int(e.TicketsAvailable),
		TicketsSold:        int(e.TicketsSold),
		TicketsSoldChange:  e.TicketsSoldChange,
		PageViews:          e.PageViews,
		PageViewsChange:    e.PageViewsChange,
		Status:             domain.EventStatus(e.Status),
		ImgURL:             e.ImgUrl,
		ThumbURL:           e.ThumbUrl,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func repoCustomerToDomain(c repository.Customer) domain.Customer {
	return domain.Customer{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Address:   c.Address,
		Country:   c.Country,
		FlagURL:   c.FlagUrl,
		CreatedAt: c.CreatedAt,
	}
}

func repoOrderToDomain(o repository.OrderDetail) domain.Order {
	order := domain.Order{
		ID:            o.ID,
		Date:          o.Date,
		AmountUSD:     o.AmountUsd,
		AmountCAD:     o.AmountCad,
		Fee:           o.Fee,
		Net:           o.Net,
		TransactionID: o.TransactionID,
		CustomerID:    o.CustomerID,
		EventID:       o.EventID,
		CreatedAt:     o.CreatedAt,
		Customer: domain.Customer{
			ID:      o.CustomerID,
			Name:    o.CustomerName,
			Email:   o.CustomerEmail,
			Address: o.CustomerAddress,
			Country: o.CustomerCountry,
			FlagURL: o.CustomerFlagUrl,
		},
		Event: domain.Event{
			ID:       o.EventID,
			Name:     o.EventName,
			Date:     o.EventDate,
			Time:     o.EventTime,
			Location: o.EventLocation,
			Status:   domain.EventStatus(o.EventStatus),
			ThumbURL: o.EventThumbUrl,
		},
	}
	if o.PaymentCardNumber.Valid {
		order.Payment = &domain.Payment{
			CardNumber: o.PaymentCardNumber.String,
			CardType:   o.PaymentCardType.String,
			CardExpiry: o.PaymentCardExpiry.String,
		}
	}
	return order
}

func repoOrdersToDomain(rows []repository.OrderDetail) []domain.Order {
	orders := make([]domain.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, repoOrderToDomain(r))
	}
	return orders
}
