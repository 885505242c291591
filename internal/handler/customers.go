package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security/middleware"
	"github.com/yourorg/tenantcrm/internal/service"
)

// CustomersHandler handles the customer CRUD endpoints. Every method reads
// its scope from the request's Grant; a request that never passed the tenant
// middleware cannot reach data access.
type CustomersHandler struct {
	customers *service.CustomerService
	logger    *slog.Logger
}

// NewCustomersHandler creates a new customers handler
func NewCustomersHandler(customers *service.CustomerService, logger *slog.Logger) *CustomersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomersHandler{customers: customers, logger: logger}
}

// List handles GET /api/customers
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	customers, err := h.customers.List(r.Context(), grant)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if customers == nil {
		customers = []*domain.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

// Get handles GET /api/customers/{id}
func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	customer, err := h.customers.Get(r.Context(), grant, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Create handles POST /api/customers
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	var in service.CustomerInput
	if err := middleware.DecodeStrict(r.Body, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	customer, err := h.customers.Create(r.Context(), grant, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// Update handles PUT /api/customers/{id}
func (h *CustomersHandler) Update(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	var in service.CustomerInput
	if err := middleware.DecodeStrict(r.Body, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	customer, err := h.customers.Update(r.Context(), grant, r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/{id}
func (h *CustomersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	if err := h.customers.Delete(r.Context(), grant, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "customer deleted successfully"})
}
