package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHandler "github.com/jwalitptl/clinic-api/internal/handler/booking"
	catalogHandler "github.com/jwalitptl/clinic-api/internal/handler/catalog"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	paymentHandler "github.com/jwalitptl/clinic-api/internal/handler/payment"
	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/clinic-api/internal/handler/user"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/internal/router"
	"github.com/jwalitptl/clinic-api/internal/service/authority"
	"github.com/jwalitptl/clinic-api/internal/service/availability"
	"github.com/jwalitptl/clinic-api/internal/service/booking"
	"github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/internal/service/identity"
	"github.com/jwalitptl/clinic-api/internal/service/payment"
	"github.com/jwalitptl/clinic-api/internal/service/user"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type nopNotifier struct{}

func (nopNotifier) BookingConfirmed(context.Context, *model.Booking) error { return nil }

type fakeGateway struct{}

func (fakeGateway) CreateIntent(_ context.Context, amount int64, currency string) (string, error) {
	return "pi_test_secret", nil
}

type app struct {
	engine   *gin.Engine
	repos    *repository.Repositories
	tokens   *identity.Service
	bookings *booking.Service
}

func newApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	repos := memory.NewRepositories()
	require.NoError(t, repos.Services.Upsert(ctx, &model.Service{
		Name:  "Cleaning",
		Slots: []string{"9am", "10am", "11am"},
		Price: 45,
	}))
	require.NoError(t, repos.Services.Upsert(ctx, &model.Service{
		Name:  "Whitening",
		Slots: []string{"9am"},
		Price: 120,
	}))

	jwt, err := auth.NewJWT("test-secret", time.Hour)
	require.NoError(t, err)

	events := event.NewEventService(repos.Outbox)
	m := metrics.New("test", nil)

	tokens := identity.NewService(jwt)
	authoritySvc := authority.NewService(repos.Users, events, log)
	authMW := middleware.NewAuthMiddleware(tokens, authoritySvc)

	catalogSvc := catalog.NewService(repos.Services, repos.Doctors, events, log, 0)
	bookingSvc := booking.NewService(repos.Services, repos.Bookings, nopNotifier{}, events, m, log, time.Second)
	availabilitySvc := availability.NewService(repos.Services, repos.Bookings)
	paymentSvc := payment.NewService(repos.Bookings, fakeGateway{}, events, m, log, "usd")
	userSvc := user.NewService(repos.Users, tokens, log)

	r := router.NewRouter(router.Handlers{
		Catalog: catalogHandler.NewHandler(catalogSvc, authMW),
		Booking: bookingHandler.NewHandler(bookingSvc, availabilitySvc, authMW),
		Payment: paymentHandler.NewHandler(paymentSvc, authMW),
		User:    userHandler.NewHandler(userSvc, authoritySvc, authMW),
		Health:  health.NewHandler(repos.Health),
		Metrics: prometheus.New(prom.NewRegistry(), "test"),
	}, router.RouterConfig{
		CORSConfig: middleware.DefaultCORSConfig(),
		Mode:       gin.TestMode,
	})
	r.Setup()

	t.Cleanup(bookingSvc.Wait)
	return &app{
		engine:   r.Engine(),
		repos:    repos,
		tokens:   tokens,
		bookings: bookingSvc,
	}
}

func (a *app) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) login(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPut, "/token", model.UserProfile{Email: email, Name: "Test"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func bookingBody() gin.H {
	return gin.H{
		"patientName":   "Ann",
		"treatmentName": "Cleaning",
		"email":         "ann@example.com",
		"date":          "2024-01-01",
		"slot":          "9am",
	}
}

func TestRootAndHealth(t *testing.T) {
	a := newApp(t)

	w := a.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server running", w.Body.String())

	w = a.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingFlow(t *testing.T) {
	a := newApp(t)
	token := a.login(t, "ann@example.com")

	w := a.do(t, http.MethodPost, "/book", bookingBody(), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created bookingHandler.CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.False(t, created.AlreadyExists)
	require.NotNil(t, created.Result)

	again := bookingBody()
	again["slot"] = "11am"
	w = a.do(t, http.MethodPost, "/book", again, "")
	require.Equal(t, http.StatusOK, w.Code)

	var dup bookingHandler.CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dup))
	assert.False(t, dup.Success)
	assert.True(t, dup.AlreadyExists)
	assert.Equal(t, created.Result.ID, dup.Result.ID)

	w = a.do(t, http.MethodGet, "/available?email=ann@example.com&date=2024-01-01", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var open []model.ServiceAvailability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &open))
	require.Len(t, open, 2)
	assert.Equal(t, []string{"10am", "11am"}, open[0].Slots)
	assert.Equal(t, []string{"9am"}, open[1].Slots)

	w = a.do(t, http.MethodGet, "/myData?email=ann@example.com", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	w = a.do(t, http.MethodGet, "/payment/"+created.Result.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	w = a.do(t, http.MethodPatch, "/update-user/"+created.Result.ID, gin.H{"transactionId": "tx_1", "price": 45}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paid))
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.TransactionID)
	assert.Equal(t, "tx_1", *paid.TransactionID)

	w = a.do(t, http.MethodPatch, "/update-user/"+created.Result.ID, gin.H{"transactionId": "tx_2"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTransactionPaysOneBooking(t *testing.T) {
	a := newApp(t)

	ids := make([]string, 0, 2)
	for _, name := range []string{"Ann", "Bob"} {
		body := bookingBody()
		body["patientName"] = name
		w := a.do(t, http.MethodPost, "/book", body, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created bookingHandler.CreateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		ids = append(ids, created.Result.ID)
	}

	w := a.do(t, http.MethodPatch, "/update-user/"+ids[0], gin.H{"transactionId": "tx_same"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPatch, "/update-user/"+ids[1], gin.H{"transactionId": "tx_same"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodGet, "/payment/"+ids[1], nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var second model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.False(t, second.Paid)
}

func TestBookRejectsInvalidBody(t *testing.T) {
	a := newApp(t)

	body := bookingBody()
	delete(body, "email")
	w := a.do(t, http.MethodPost, "/book", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = bookingBody()
	body["slot"] = "7pm"
	w = a.do(t, http.MethodPost, "/book", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOwnershipIsEnforced(t *testing.T) {
	a := newApp(t)
	token := a.login(t, "bob@example.com")

	w := a.do(t, http.MethodGet, "/available?email=ann@example.com&date=2024-01-01", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodGet, "/myData?email=ann@example.com", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodGet, "/myData?email=bob@example.com", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/myData?email=bob@example.com", nil, "garbage")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	userToken := a.login(t, "bob@example.com")
	adminToken := a.login(t, "root@example.com")
	_, err := a.repos.Users.SetRole(ctx, "root@example.com", model.RoleAdmin)
	require.NoError(t, err)

	w := a.do(t, http.MethodGet, "/admin?email=root@example.com", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Body.String())

	w = a.do(t, http.MethodGet, "/admin?email=bob@example.com", nil, "")
	assert.Equal(t, "false", w.Body.String())

	w = a.do(t, http.MethodPut, "/users/admin/carol@example.com", nil, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPut, "/users/admin/carol@example.com", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(t, http.MethodGet, "/admin?email=carol@example.com", nil, "")
	assert.Equal(t, "true", w.Body.String())

	w = a.do(t, http.MethodPost, "/addDoctor", gin.H{"name": "Dr. Who", "email": "who@example.com", "specialty": "Cleaning"}, userToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doctor model.Doctor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doctor))

	w = a.do(t, http.MethodDelete, "/delete-doctor/"+doctor.ID, nil, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodDelete, "/delete-doctor/"+doctor.ID, nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted model.DeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, int64(1), deleted.DeletedCount)

	w = a.do(t, http.MethodGet, "/manageDoctor", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestTokenIgnoresRoleInBody(t *testing.T) {
	a := newApp(t)

	w := a.do(t, http.MethodPut, "/token", gin.H{"email": "eve@example.com", "role": "Admin"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/admin?email=eve@example.com", nil, "")
	assert.Equal(t, "false", w.Body.String())

	w = a.do(t, http.MethodPut, "/token", gin.H{"name": "no email"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenKeepsStoredProfile(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	w := a.do(t, http.MethodPut, "/token", gin.H{"email": "ann@example.com", "name": "Ann", "photoURL": "https://example.com/ann.png"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(t, http.MethodPut, "/token", gin.H{"email": "ann@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	u, err := a.repos.Users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "https://example.com/ann.png", u.PhotoURL)
}

func TestCreatePaymentIntent(t *testing.T) {
	a := newApp(t)
	token := a.login(t, "ann@example.com")

	w := a.do(t, http.MethodPost, "/create-payment-intent", gin.H{"price": 45}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var intent model.PaymentIntent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &intent))
	assert.Equal(t, "pi_test_secret", intent.ClientSecret)

	w = a.do(t, http.MethodPost, "/create-payment-intent", gin.H{"price": 45}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
