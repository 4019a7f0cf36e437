package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DukeRupert/boxoffice/internal/auth"
	"github.com/DukeRupert/boxoffice/internal/csrf"
	"github.com/DukeRupert/boxoffice/internal/domain"
	"github.com/DukeRupert/boxoffice/internal/service"
)

// PagesHandler serves the console pages behind the gatekeeper.
//
// Routes handled:
//   - GET /             -> Dashboard
//   - GET /events       -> ListEvents
//   - GET /events/{id}  -> ShowEvent
//   - GET /orders       -> ListOrders
//   - GET /orders/{id}  -> ShowOrder
//   - GET /settings     -> ShowSettings
type PagesHandler struct {
	ticketing service.TicketingService
	renderer  TemplateRenderer
	logger    *slog.Logger
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(ticketing service.TicketingService, renderer TemplateRenderer, logger *slog.Logger) *PagesHandler {
	return &PagesHandler{
		ticketing: ticketing,
		renderer:  renderer,
		logger:    logger,
	}
}

// RegisterRoutes registers the console routes on mux.
func (h *PagesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Dashboard)
	mux.HandleFunc("GET /events", h.ListEvents)
	mux.HandleFunc("GET /events/{id}", h.ShowEvent)
	mux.HandleFunc("GET /orders", h.ListOrders)
	mux.HandleFunc("GET /orders/{id}", h.ShowOrder)
	mux.HandleFunc("GET /settings", h.ShowSettings)
}

// AppPageData is the data common to every page in the app layout.
type AppPageData struct {
	CurrentPath string
	CSRFToken   string
	User        *domain.User
}

func appPageData(r *http.Request) AppPageData {
	return AppPageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.Token(r),
		User:        auth.GetUserFromRequest(r),
	}
}

// =============================================================================
// GET / - Dashboard
// =============================================================================

// DashboardPageData feeds pages/dashboard.html.
type DashboardPageData struct {
	AppPageData
	Events       []domain.Event
	RecentOrders []domain.Order
}

// Dashboard shows the events overview and the most recent orders. The
// optional limit query parameter sets the order count.
func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.ticketing.ListEvents(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	orders, err := h.ticketing.ListRecentOrders(r.Context(), limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "dashboard", DashboardPageData{
		AppPageData:  appPageData(r),
		Events:       events,
		RecentOrders: orders,
	})
}

// =============================================================================
// Events
// =============================================================================

// EventsPageData feeds pages/events/index.html.
type EventsPageData struct {
	AppPageData
	Events []domain.Event
}

// EventPageData feeds pages/events/show.html.
type EventPageData struct {
	AppPageData
	Event  *domain.Event
	Orders []domain.Order
}

// ListEvents shows every event, newest first.
func (h *PagesHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.ticketing.ListEvents(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "events/index", EventsPageData{
		AppPageData: appPageData(r),
		Events:      events,
	})
}

// ShowEvent shows an event with its orders.
func (h *PagesHandler) ShowEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	event, err := h.ticketing.GetEvent(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	orders, err := h.ticketing.ListEventOrders(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "events/show", EventPageData{
		AppPageData: appPageData(r),
		Event:       event,
		Orders:      orders,
	})
}

// =============================================================================
// Orders
// =============================================================================

// OrdersPageData feeds pages/orders/index.html.
type OrdersPageData struct {
	AppPageData
	Orders []domain.Order
}

// OrderPageData feeds pages/orders/show.html.
type OrderPageData struct {
	AppPageData
	Order *domain.Order
}

// ListOrders shows every order, newest first.
func (h *PagesHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ticketing.ListOrders(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "orders/index", OrdersPageData{
		AppPageData: appPageData(r),
		Orders:      orders,
	})
}

// ShowOrder shows one order with its customer, event and payment.
func (h *PagesHandler) ShowOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.ticketing.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "orders/show", OrderPageData{
		AppPageData: appPageData(r),
		Order:       order,
	})
}

// =============================================================================
// GET /settings
// =============================================================================

// SettingsPageData feeds pages/settings.html.
type SettingsPageData struct {
	AppPageData
	Countries []domain.Country
}

// ShowSettings renders the organization settings form with its country list.
func (h *PagesHandler) ShowSettings(w http.ResponseWriter, r *http.Request) {
	countries, err := h.ticketing.ListCountries(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "settings", SettingsPageData{
		AppPageData: appPageData(r),
		Countries:   countries,
	})
}

// =============================================================================
// GET /health
// =============================================================================

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports 200 when the database answers a ping and 503 otherwise.
func Health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	}
}
