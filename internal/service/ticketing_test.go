package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/repository"
)

// mockTicketingQueries returns sql.ErrNoRows for any unset lookup.
type mockTicketingQueries struct {
	ListEventsFunc         func(ctx context.Context) ([]repository.Event, error)
	GetEventFunc           func(ctx context.Context, id int64) (repository.Event, error)
	ListOrdersFunc         func(ctx context.Context) ([]repository.OrderDetail, error)
	ListRecentOrdersFunc   func(ctx context.Context, limit int32) ([]repository.OrderDetail, error)
	ListEventOrdersFunc    func(ctx context.Context, eventID int64) ([]repository.OrderDetail, error)
	GetOrderFunc           func(ctx context.Context, id int64) (repository.OrderDetail, error)
	GetCustomerFunc        func(ctx context.Context, id int64) (repository.Customer, error)
	GetCustomerByEmailFunc func(ctx context.Context, email string) (repository.Customer, error)
	ListCountriesFunc      func(ctx context.Context) ([]repository.Country, error)
}

func (m *mockTicketingQueries) ListEvents(ctx context.Context) ([]repository.Event, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx)
	}
	return nil, nil
}

func (m *mockTicketingQueries) GetEvent(ctx context.Context, id int64) (repository.Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, id)
	}
	return repository.Event{}, sql.ErrNoRows
}

func (m *mockTicketingQueries) ListOrders(ctx context.Context) ([]repository.OrderDetail, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx)
	}
	return nil, nil
}

func (m *mockTicketingQueries) ListRecentOrders(ctx context.Context, limit int32) ([]repository.OrderDetail, error) {
	if m.ListRecentOrdersFunc != nil {
		return m.ListRecentOrdersFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockTicketingQueries) ListEventOrders(ctx context.Context, eventID int64) ([]repository.OrderDetail, error) {
	if m.ListEventOrdersFunc != nil {
		return m.ListEventOrdersFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockTicketingQueries) GetOrder(ctx context.Context, id int64) (repository.OrderDetail, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return repository.OrderDetail{}, sql.ErrNoRows
}

func (m *mockTicketingQueries) GetCustomer(ctx context.Context, id int64) (repository.Customer, error) {
	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, id)
	}
	return repository.Customer{}, sql.ErrNoRows
}

func (m *mockTicketingQueries) GetCustomerByEmail(ctx context.Context, email string) (repository.Customer, error) {
	if m.GetCustomerByEmailFunc != nil {
		return m.GetCustomerByEmailFunc(ctx, email)
	}
	return repository.Customer{}, sql.ErrNoRows
}

func (m *mockTicketingQueries) ListCountries(ctx context.Context) ([]repository.Country, error) {
	if m.ListCountriesFunc != nil {
		return m.ListCountriesFunc(ctx)
	}
	return nil, nil
}

func TestGetEvent(t *testing.T) {
	svc := NewTicketingService(&mockTicketingQueries{
		GetEventFunc: func(ctx context.Context, id int64) (repository.Event, error) {
			if id == 1 {
				return repository.Event{ID: 1, Name: "Bear Hug", TicketsAvailable: 500, TicketsSold: 350, Status: "on_sale"}, nil
			}
			return repository.Event{}, sql.ErrNoRows
		},
	}, discardLogger())

	event, err := svc.GetEvent(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Bear Hug", event.Name)
	assert.Equal(t, domain.EventStatusOnSale, event.Status)
	assert.Equal(t, 150, event.TicketsRemaining())

	for _, id := range []string{"2", "abc", "0", "-4", ""} {
		_, err := svc.GetEvent(context.Background(), id)
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err), "id %q", id)
	}
}

func TestGetEvent_DBError(t *testing.T) {
	svc := NewTicketingService(&mockTicketingQueries{
		GetEventFunc: func(ctx context.Context, id int64) (repository.Event, error) {
			return repository.Event{}, errors.New("db down")
		},
	}, discardLogger())

	_, err := svc.GetEvent(context.Background(), "1")
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestGetOrder_Payment(t *testing.T) {
	svc := NewTicketingService(&mockTicketingQueries{
		GetOrderFunc: func(ctx context.Context, id int64) (repository.OrderDetail, error) {
			o := repository.OrderDetail{ID: id, CustomerID: 7, EventID: 1, CustomerName: "Leslie", EventName: "Bear Hug"}
			if id == 1 {
				o.PaymentCardNumber = sql.NullString{String: "1254", Valid: true}
				o.PaymentCardType = sql.NullString{String: "Visa", Valid: true}
				o.PaymentCardExpiry = sql.NullString{String: "01/2027", Valid: true}
			}
			return o, nil
		},
	}, discardLogger())

	paid, err := svc.GetOrder(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, paid.Payment)
	assert.Equal(t, "1254", paid.Payment.CardNumber)
	assert.Equal(t, "Leslie", paid.Customer.Name)
	assert.Equal(t, int64(7), paid.Customer.ID)
	assert.Equal(t, "Bear Hug", paid.Event.Name)

	unpaid, err := svc.GetOrder(context.Background(), "2")
	require.NoError(t, err)
	assert.Nil(t, unpaid.Payment)
}

func TestListRecentOrders_Limit(t *testing.T) {
	var got []int32
	svc := NewTicketingService(&mockTicketingQueries{
		ListRecentOrdersFunc: func(ctx context.Context, limit int32) ([]repository.OrderDetail, error) {
			got = append(got, limit)
			return []repository.OrderDetail{{ID: 1}}, nil
		},
	}, discardLogger())

	for _, limit := range []int{0, -1, 5, 1000} {
		orders, err := svc.ListRecentOrders(context.Background(), limit)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	}
	assert.Equal(t, []int32{DefaultRecentOrders, DefaultRecentOrders, 5, MaxRecentOrders}, got)
}

func TestListEventOrders_InvalidID(t *testing.T) {
	called := false
	svc := NewTicketingService(&mockTicketingQueries{
		ListEventOrdersFunc: func(ctx context.Context, eventID int64) ([]repository.OrderDetail, error) {
			called = true
			return nil, nil
		},
	}, discardLogger())

	_, err := svc.ListEventOrders(context.Background(), "x")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.False(t, called)
}

func TestListOrders_Empty(t *testing.T) {
	svc := NewTicketingService(&mockTicketingQueries{}, discardLogger())

	orders, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestGetCustomerByEmail_Normalizes(t *testing.T) {
	svc := NewTicketingService(&mockTicketingQueries{
		GetCustomerByEmailFunc: func(ctx context.Context, email string) (repository.Customer, error) {
			if email == "leslie@example.com" {
				return repository.Customer{ID: 7, Email: email, FlagUrl: "/flags/ca.svg"}, nil
			}
			return repository.Customer{}, sql.ErrNoRows
		},
	}, discardLogger())

	c, err := svc.GetCustomerByEmail(context.Background(), " Leslie@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "/flags/ca.svg", c.FlagURL)

	_, err = svc.GetCustomerByEmail(context.Background(), "nobody@example.com")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestListCountries(t *testing.T) {
	svc := NewTicketingService(&mockTicketingQueries{
		ListCountriesFunc: func(ctx context.Context) ([]repository.Country, error) {
			return []repository.Country{{ID: 1, Name: "Canada", Code: "CA", Regions: []string{"Ontario"}}}, nil
		},
	}, discardLogger())

	countries, err := svc.ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, []string{"Ontario"}, countries[0].Regions)
}
