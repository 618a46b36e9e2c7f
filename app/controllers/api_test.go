package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/karigar/app/controllers"
	"github.com/shashiranjanraj/karigar/app/models"
	"github.com/shashiranjanraj/karigar/app/repositories"
	"github.com/shashiranjanraj/karigar/app/routes"
	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/router"
)

// ─── in-memory fakes ──────────────────────────────────────────────────────────

type memVerifier struct {
	tokens map[string]identity.Identity
}

func (v *memVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	id, ok := v.tokens[token]
	if !ok {
		return identity.Identity{}, identity.ErrInvalidToken
	}
	return id, nil
}

type memDirectory struct {
	users       map[string]models.User
	upsertCalls int
}

func (d *memDirectory) Upsert(_ context.Context, email, name string) (models.User, bool, error) {
	d.upsertCalls++
	if u, ok := d.users[email]; ok {
		u.Name = name
		u.UpdatedAt = time.Now()
		d.users[email] = u
		return u, false, nil
	}
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Name:      name,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
	d.users[email] = u
	return u, true, nil
}

func (d *memDirectory) FindByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := d.users[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func (d *memDirectory) Promote(_ context.Context, email string) (models.User, error) {
	u, ok := d.users[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	u.Role = models.RoleAdmin
	d.users[email] = u
	return u, nil
}

func (d *memDirectory) RoleByEmail(ctx context.Context, email string) (string, error) {
	u, err := d.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (d *memDirectory) Forget(context.Context, string) {}

type memServices struct {
	items       []models.Service
	createCalls int
}

func (s *memServices) Create(_ context.Context, service *models.Service) error {
	s.createCalls++
	service.ID = primitive.NewObjectID()
	service.CreatedAt = time.Now()
	s.items = append(s.items, *service)
	return nil
}

func (s *memServices) All(context.Context) ([]models.Service, error) {
	return append([]models.Service{}, s.items...), nil
}

func (s *memServices) FindByID(_ context.Context, id string) (models.Service, error) {
	for _, svc := range s.items {
		if svc.ID.Hex() == id {
			return svc, nil
		}
	}
	return models.Service{}, repositories.ErrNotFound
}

func (s *memServices) Delete(_ context.Context, id string) (models.Service, error) {
	for i, svc := range s.items {
		if svc.ID.Hex() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return svc, nil
		}
	}
	return models.Service{}, repositories.ErrNotFound
}

type memReviews struct {
	items []models.Review
}

func (r *memReviews) Create(_ context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	r.items = append(r.items, *review)
	return nil
}

func (r *memReviews) All(context.Context) ([]models.Review, error) {
	return append([]models.Review{}, r.items...), nil
}

type memOrders struct {
	items    []models.Order
	services *memServices
}

func (o *memOrders) Create(_ context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	order.Status = models.StatusPending
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	o.items = append(o.items, *order)
	return nil
}

func (o *memOrders) FindByID(_ context.Context, id string) (models.Order, error) {
	for _, ord := range o.items {
		if ord.ID.Hex() == id {
			return ord, nil
		}
	}
	return models.Order{}, repositories.ErrNotFound
}

func (o *memOrders) List(ctx context.Context, email string) ([]models.OrderWithService, error) {
	out := []models.OrderWithService{}
	for _, ord := range o.items {
		if email != "" && ord.Email != email {
			continue
		}
		entry := models.OrderWithService{Order: ord}
		if svc, err := o.services.FindByID(ctx, ord.ServiceID.Hex()); err == nil {
			entry.Service = &models.ServiceSummary{
				Title:       svc.Title,
				Description: svc.Description,
				Price:       svc.Price,
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (o *memOrders) SetStatus(_ context.Context, id string, status models.OrderStatus) (models.Order, error) {
	for i, ord := range o.items {
		if ord.ID.Hex() == id {
			o.items[i].Status = status
			o.items[i].UpdatedAt = time.Now()
			return o.items[i], nil
		}
	}
	return models.Order{}, repositories.ErrNotFound
}

// ─── fixture ──────────────────────────────────────────────────────────────────

const (
	adminToken = "tok-admin"
	ashaToken  = "tok-asha"
	binitToken = "tok-binit"
)

type apiFixture struct {
	handler  http.Handler
	dir      *memDirectory
	services *memServices
	reviews  *memReviews
	orders   *memOrders
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()

	dir := &memDirectory{users: map[string]models.User{
		"boss@example.com": {
			ID:    primitive.NewObjectID(),
			Email: "boss@example.com",
			Name:  "Boss",
			Role:  models.RoleAdmin,
		},
	}}
	services := &memServices{}
	reviews := &memReviews{}
	orders := &memOrders{services: services}

	verifier := &memVerifier{tokens: map[string]identity.Identity{
		adminToken: {Email: "boss@example.com", Name: "Boss"},
		ashaToken:  {Email: "asha@example.com", Name: "Asha"},
		binitToken: {Email: "binit@example.com", Name: "Binit"},
	}}

	r := routerWithAPI(routes.Deps{
		Verifier: verifier,
		Roles:    dir,
		Users:    controllers.NewUserController(dir, dir),
		Services: controllers.NewServiceController(services, nil),
		Reviews:  controllers.NewReviewController(reviews, nil),
		Orders:   controllers.NewOrderController(orders, dir),
		Health: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	return &apiFixture{handler: r, dir: dir, services: services, reviews: reviews, orders: orders}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createService(t *testing.T, title string, price float64) models.Service {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/services", adminToken, map[string]interface{}{
		"service": map[string]interface{}{"title": title, "description": "d", "price": price},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var svc models.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &svc))
	return svc
}

// ─── guard behaviour ──────────────────────────────────────────────────────────

func TestGuardedRoutesRejectMissingToken(t *testing.T) {
	f := newAPI(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/create-or-update-user"},
		{http.MethodPost, "/current-user"},
		{http.MethodPut, "/make-admin"},
		{http.MethodPost, "/services"},
		{http.MethodGet, "/orders"},
		{http.MethodPost, "/orders"},
	} {
		rec := f.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
		assert.JSONEq(t, `{"err":"Invalid or expired token"}`, rec.Body.String())
	}

	assert.Zero(t, f.dir.upsertCalls, "handlers must not run")
	assert.Zero(t, f.services.createCalls)
}

func TestAdminRoutesRejectRegularUser(t *testing.T) {
	f := newAPI(t)

	// Asha signs in so a non-admin directory record exists.
	rec := f.do(t, http.MethodPost, "/create-or-update-user", ashaToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, route := range []struct{ method, path string }{
		{http.MethodPut, "/make-admin"},
		{http.MethodPost, "/current-admin"},
		{http.MethodPost, "/services"},
		{http.MethodDelete, "/services/" + primitive.NewObjectID().Hex()},
		{http.MethodPut, "/orders/" + primitive.NewObjectID().Hex()},
	} {
		rec := f.do(t, route.method, route.path, ashaToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", route.method, route.path)
		assert.JSONEq(t, `{"err":"Admin Resource, Access denied"}`, rec.Body.String())
	}

	assert.Zero(t, f.services.createCalls)
}

func TestAdminGuardFailsClosedWithoutDirectoryRecord(t *testing.T) {
	f := newAPI(t)

	// Binit has a valid token but never called create-or-update-user.
	rec := f.do(t, http.MethodPost, "/current-admin", binitToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodGet, "/services", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/reviews", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
}

// ─── user directory ───────────────────────────────────────────────────────────

func TestCreateOrUpdateUserIsIdempotent(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/create-or-update-user", ashaToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/create-or-update-user", ashaToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)

	count := 0
	for email := range f.dir.users {
		if email == "asha@example.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMakeAdminPromotesAndReturns404ForUnknown(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/create-or-update-user", ashaToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPut, "/make-admin", adminToken,
		map[string]string{"email": "asha@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, models.RoleAdmin, user.Role)

	rec = f.do(t, http.MethodPut, "/make-admin", adminToken,
		map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"err":"user not found"}`, rec.Body.String())
}

func TestCurrentUserAndCurrentAdmin(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/current-admin", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "boss@example.com", user.Email)

	// A verified identity with no directory record is a 404, not a 200/null.
	rec = f.do(t, http.MethodPost, "/current-user", binitToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ─── services ─────────────────────────────────────────────────────────────────

func TestServiceCreateStampsOwnerEmail(t *testing.T) {
	f := newAPI(t)

	// An email in the body must be ignored in favour of the verified identity.
	rec := f.do(t, http.MethodPost, "/services", adminToken, map[string]interface{}{
		"service": map[string]interface{}{
			"title": "Plumbing",
			"price": 49.0,
			"email": "spoofed@example.com",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var svc models.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &svc))
	assert.Equal(t, "boss@example.com", svc.Email)
	assert.Equal(t, "Plumbing", svc.Title)
}

func TestServiceGetAndDelete(t *testing.T) {
	f := newAPI(t)
	svc := f.createService(t, "Wiring", 80)

	rec := f.do(t, http.MethodGet, "/services/"+svc.ID.Hex(), ashaToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/services/"+primitive.NewObjectID().Hex(), ashaToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"err":"service not found"}`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/services/"+svc.ID.Hex(), adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var removed models.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
	assert.Equal(t, svc.ID, removed.ID)

	rec = f.do(t, http.MethodDelete, "/services/"+svc.ID.Hex(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ─── reviews ──────────────────────────────────────────────────────────────────

func TestReviewCreateStampsAuthor(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/reviews", ashaToken, map[string]interface{}{
		"review": map[string]interface{}{"name": "Asha", "comment": "great work", "rating": 5},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var review models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &review))
	assert.Equal(t, "asha@example.com", review.Email)

	rec = f.do(t, http.MethodGet, "/reviews", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var reviews []models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "great work", reviews[0].Comment)
}

// ─── orders ───────────────────────────────────────────────────────────────────

func TestOrderListingIsRoleScoped(t *testing.T) {
	f := newAPI(t)
	svc := f.createService(t, "Painting", 120)

	// Asha and Binit each sign in and place one order.
	for _, token := range []string{ashaToken, binitToken} {
		rec := f.do(t, http.MethodPost, "/create-or-update-user", token, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = f.do(t, http.MethodPost, "/orders", token, map[string]interface{}{
			"order": map[string]interface{}{"service_id": svc.ID.Hex()},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/orders", ashaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var mine []models.OrderWithService
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "asha@example.com", mine[0].Email)
	require.NotNil(t, mine[0].Service)
	assert.Equal(t, "Painting", mine[0].Service.Title)
	assert.Equal(t, 120.0, mine[0].Service.Price)

	rec = f.do(t, http.MethodGet, "/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var all []models.OrderWithService
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)
}

func TestOrderStatusRoundTrip(t *testing.T) {
	f := newAPI(t)
	svc := f.createService(t, "Cleaning", 30)

	rec := f.do(t, http.MethodPost, "/orders", ashaToken, map[string]interface{}{
		"order": map[string]interface{}{"service_id": svc.ID.Hex(), "note": "weekly"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, models.StatusPending, order.Status)

	// pending cannot jump straight to completed
	rec = f.do(t, http.MethodPut, "/orders/"+order.ID.Hex(), adminToken,
		map[string]interface{}{"order": map[string]string{"status": "completed"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"err":"invalid status transition"}`, rec.Body.String())

	for _, status := range []string{"approved", "completed"} {
		rec = f.do(t, http.MethodPut, "/orders/"+order.ID.Hex(), adminToken,
			map[string]interface{}{"order": map[string]string{"status": status}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/orders", ashaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.OrderWithService
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, models.StatusCompleted, listed[0].Status)
	assert.Equal(t, "weekly", listed[0].Note)
}

func TestOrderListingOmitsDeletedService(t *testing.T) {
	f := newAPI(t)
	svc := f.createService(t, "Roofing", 500)

	rec := f.do(t, http.MethodPost, "/orders", ashaToken, map[string]interface{}{
		"order": map[string]interface{}{"service_id": svc.ID.Hex()},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodDelete, "/services/"+svc.ID.Hex(), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/orders", ashaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.NotContains(t, raw[0], "service", "dangling reference must not serialise a zero summary")
}

func TestOrderUpdateMissingIDReturns404(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPut, "/orders/"+primitive.NewObjectID().Hex(), adminToken,
		map[string]interface{}{"order": map[string]string{"status": "approved"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"err":"order not found"}`, rec.Body.String())
}

func TestOrderCreateRejectsBadServiceReference(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/orders", ashaToken, map[string]interface{}{
		"order": map[string]interface{}{"service_id": "not-hex"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// routerWithAPI builds a handler with only the route table mounted, no
// global middleware, so tests exercise the guards exactly as registered.
func routerWithAPI(d routes.Deps) http.Handler {
	r := router.New()
	routes.RegisterAPI(r, d)
	return r.Handler()
}
