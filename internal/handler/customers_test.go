package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security/audit"
	"github.com/yourorg/tenantcrm/internal/security/middleware"
	"github.com/yourorg/tenantcrm/internal/service"
)

type memCustomerRepo struct {
	rows map[string]*domain.Customer
	seq  int
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{rows: map[string]*domain.Customer{}}
}

func (m *memCustomerRepo) List(ctx context.Context, grant domain.Grant) ([]*domain.Customer, error) {
	out := []*domain.Customer{}
	for _, c := range m.rows {
		if c.TenantID == grant.TenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCustomerRepo) GetByID(ctx context.Context, grant domain.Grant, id string) (*domain.Customer, error) {
	c, ok := m.rows[id]
	if !ok || c.TenantID != grant.TenantID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *memCustomerRepo) Create(ctx context.Context, grant domain.Grant, c *domain.Customer) error {
	m.seq++
	c.ID = fmt.Sprintf("c-%d", m.seq)
	c.TenantID = grant.TenantID
	c.CreatedBy = grant.UserID
	c.CreatedAt = time.Now()
	m.rows[c.ID] = c
	return nil
}

func (m *memCustomerRepo) Update(ctx context.Context, grant domain.Grant, id string, upd domain.CustomerUpdate) (*domain.Customer, error) {
	c, ok := m.rows[id]
	if !ok || c.TenantID != grant.TenantID {
		return nil, domain.ErrNotFound
	}
	c.Name = upd.Name
	c.Status = upd.Status
	return c, nil
}

func (m *memCustomerRepo) Delete(ctx context.Context, grant domain.Grant, id string) error {
	c, ok := m.rows[id]
	if !ok || c.TenantID != grant.TenantID {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memCustomerRepo) CountByTenant(ctx context.Context, grant domain.Grant) (int, error) {
	return len(m.rows), nil
}

func (m *memCustomerRepo) CountByStatus(ctx context.Context, grant domain.Grant) (map[domain.CustomerStatus]int, error) {
	return map[domain.CustomerStatus]int{}, nil
}

func (m *memCustomerRepo) TotalAcrossTenants(ctx context.Context) (int, error) {
	return len(m.rows), nil
}

// customersTestServer routes requests through a real mux so path values
// resolve, with the given grant injected where the tenant middleware would.
func customersTestServer(repo *memCustomerRepo, grant *domain.Grant) *http.ServeMux {
	svc := service.NewCustomerService(repo, nil, audit.NewLogger(nil), nil)
	h := NewCustomersHandler(svc, nil)

	withGrant := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if grant != nil {
				r = r.WithContext(middleware.ContextWithGrant(r.Context(), *grant))
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/customers", withGrant(h.List))
	mux.HandleFunc("GET /api/customers/{id}", withGrant(h.Get))
	mux.HandleFunc("POST /api/customers", withGrant(h.Create))
	mux.HandleFunc("PUT /api/customers/{id}", withGrant(h.Update))
	mux.HandleFunc("DELETE /api/customers/{id}", withGrant(h.Delete))
	return mux
}

func TestCustomerCreateAndGetRoundTrip(t *testing.T) {
	repo := newMemCustomerRepo()
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}
	mux := customersTestServer(repo, &grant)

	body := `{"name": "Jane Doe", "company": "Initech", "status": "prospect"}`
	req := httptest.NewRequest("POST", "/api/customers", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created domain.Customer
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created.TenantID != "tenant-1" || created.CreatedBy != "u-1" {
		t.Fatalf("scope must come from the grant, got %+v", created)
	}

	req = httptest.NewRequest("GET", "/api/customers/"+created.ID, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var fetched domain.Customer
	if err := json.NewDecoder(w.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if fetched.ID != created.ID || fetched.Name != "Jane Doe" {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}
}

func TestCustomerCreateRejectsUnknownFields(t *testing.T) {
	repo := newMemCustomerRepo()
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}
	mux := customersTestServer(repo, &grant)

	// tenant_id in the body must be rejected, not silently ignored
	body := `{"name": "Sneaky", "tenant_id": "tenant-2"}`
	req := httptest.NewRequest("POST", "/api/customers", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", w.Code)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("rejected request must not create a row")
	}
}

func TestCustomerCreateRequiresBody(t *testing.T) {
	repo := newMemCustomerRepo()
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}
	mux := customersTestServer(repo, &grant)

	req := httptest.NewRequest("POST", "/api/customers", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", w.Code)
	}
}

func TestCustomerDeleteForbiddenForSales(t *testing.T) {
	repo := newMemCustomerRepo()
	admin := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}
	adminMux := customersTestServer(repo, &admin)

	req := httptest.NewRequest("POST", "/api/customers", strings.NewReader(`{"name": "Target"}`))
	w := httptest.NewRecorder()
	adminMux.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}
	var created domain.Customer
	json.NewDecoder(w.Body).Decode(&created)

	sales := domain.Grant{TenantID: "tenant-1", UserID: "u-2", Role: domain.RoleSales}
	salesMux := customersTestServer(repo, &sales)

	req = httptest.NewRequest("DELETE", "/api/customers/"+created.ID, nil)
	w = httptest.NewRecorder()
	salesMux.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
		t.Fatalf("expected a JSON error body, got %q (err=%v)", w.Body.String(), err)
	}
	if _, ok := repo.rows[created.ID]; !ok {
		t.Fatalf("denied delete must leave the row")
	}
}

func TestCustomerEndpointsRequireGrant(t *testing.T) {
	repo := newMemCustomerRepo()
	mux := customersTestServer(repo, nil)

	req := httptest.NewRequest("GET", "/api/customers", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without a grant, got %d", w.Code)
	}
}

func TestCustomerGetMissing(t *testing.T) {
	repo := newMemCustomerRepo()
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}
	mux := customersTestServer(repo, &grant)

	req := httptest.NewRequest("GET", "/api/customers/nope", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
