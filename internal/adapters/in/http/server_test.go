package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "courierhub/internal/adapters/in/http"
	"courierhub/internal/core/application/usecases/commands"
	"courierhub/internal/core/application/usecases/queries"
	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/zone"
	"courierhub/internal/core/domain/services"
	"courierhub/internal/core/ports/portstest"
	"courierhub/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const webhookSecret = "test-secret"

type testAPI struct {
	e     *echo.Echo
	store *portstest.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := portstest.NewStore()
	factory := store.Factory()

	zoneID := kernel.NewUUID()
	z, err := zone.NewZone(zoneID, "Downtown", true, zone.Tariff{
		BasePrice:        500,
		PricePerKm:       200,
		SurgeMultiplier:  decimal.NewFromInt(1),
		MediumSupplement: 150,
		LargeSupplement:  300,
	})
	require.NoError(t, err)
	require.NoError(t, factory.Create().ZoneRepository().Save(t.Context(), z))

	pricing, err := services.NewPricingCalculator(decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	matcher := services.NewCourierMatcher()
	review := commands.NewReviewWithdrawalCommandHandler(factory)

	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:       commands.NewCreateOrderCommandHandler(factory, pricing, zoneID),
		AcceptOrder:       commands.NewAcceptOrderCommandHandler(factory),
		ChangeOrderStatus: commands.NewChangeOrderStatusCommandHandler(factory),
		CancelOrder:       commands.NewCancelOrderCommandHandler(factory),
		UpdateLocation:    commands.NewUpdateCourierLocationCommandHandler(factory),
		RequestWithdrawal: commands.NewRequestWithdrawalCommandHandler(factory, commands.DefaultMinimumWithdrawal),
		ReviewWithdrawal:  review,
		RecordSettlement:  commands.NewRecordSettlementCommandHandler(review, webhookSecret, zap.NewNop()),
		RetryCreditTask:   commands.NewRetryFailedCreditTaskCommandHandler(factory),
		GetOrder:          queries.NewGetOrderQueryHandler(factory),
		AvailableOrders:   queries.NewAvailableOrdersQueryHandler(factory, matcher),
		NearbyCouriers:    queries.NewNearbyCouriersQueryHandler(factory, matcher),
		GetWallet:         queries.NewGetWalletQueryHandler(factory),
		ListWithdrawals:   queries.NewListWithdrawalsQueryHandler(factory),
		ListFailedTasks:   queries.NewListFailedCreditTasksQueryHandler(factory),
	})

	spec, err := httpadapter.GetSwagger()
	require.NoError(t, err)
	reg := prometheus.NewRegistry()

	e := httpadapter.NewRouter(server, httpadapter.RouterConfig{
		Spec:     spec,
		Gatherer: reg,
		Metrics:  metrics.NewHTTPMetrics(reg),
		Log:      zap.NewNop(),
	})
	return &testAPI{e: e, store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, actor *kernel.Actor) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != nil {
		req.Header.Set(httpadapter.HeaderActorID, actor.ID.String())
		req.Header.Set(httpadapter.HeaderActorRole, string(actor.Role))
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[httpadapter.Error](t, rec)
	assert.Equal(t, code, body.Code)
	assert.NotEmpty(t, body.Message)
}

func newActor(role kernel.Role) *kernel.Actor {
	return &kernel.Actor{ID: kernel.NewUUID(), Role: role}
}

// createOrderBody is a small parcel going 5.5 km north.
func createOrderBody() httpadapter.CreateOrderRequest {
	return httpadapter.CreateOrderRequest{
		Pickup:  httpadapter.Stop{Lat: 0, Lon: 0, Address: "1 Market St", ContactName: "Ann", ContactPhone: "+100"},
		Dropoff: httpadapter.Stop{Lat: 0.049462, Lon: 0, Address: "9 Harbor Rd", ContactName: "Bob", ContactPhone: "+200"},
		Package: httpadapter.Package{Description: "documents", Size: "small", WeightKg: 0.5},
	}
}

func (a *testAPI) createOrder(t *testing.T, client *kernel.Actor) httpadapter.Order {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/orders", createOrderBody(), client)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[httpadapter.Order](t, rec)
}

func (a *testAPI) goOnline(t *testing.T, courier *kernel.Actor) {
	t.Helper()
	rec := a.do(t, http.MethodPut, "/api/v1/couriers/me/location", httpadapter.UpdateLocationRequest{
		Lat: 0.001, Lon: 0.001, Available: true, Name: "Rider", Vehicle: "bicycle",
	}, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (a *testAPI) credit(t *testing.T, courierID kernel.UUID, amount kernel.Money) {
	t.Helper()
	cmd, err := commands.NewCreditWalletCommand(courierID, amount, kernel.NewUUID())
	require.NoError(t, err)
	_, applied, err := commands.NewCreditWalletCommandHandler(a.store.Factory()).Handle(t.Context(), cmd)
	require.NoError(t, err)
	require.True(t, applied)
}

func TestServer_OrderLifecycle(t *testing.T) {
	api := newTestAPI(t)
	client := newActor(kernel.RoleClient)
	courier := newActor(kernel.RoleCourier)

	created := api.createOrder(t, client)
	assert.Equal(t, "pending", created.Status)
	assert.Nil(t, created.CourierID)
	assert.EqualValues(t, 1600, created.Price.TotalPrice)
	assert.EqualValues(t, 1360, created.Price.CourierEarnings)
	assert.InDelta(t, 5.5, created.Price.DistanceKm, 0.01)

	api.goOnline(t, courier)

	rec := api.do(t, http.MethodGet, "/api/v1/orders/available?lat=0.001&lon=0.001&radius_km=2", nil, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	available := decode[[]httpadapter.OrderMatch](t, rec)
	require.Len(t, available, 1)
	assert.Equal(t, created.ID, available[0].Order.ID)

	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/accept", nil, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accepted := decode[httpadapter.Order](t, rec)
	assert.Equal(t, "assigned", accepted.Status)
	require.NotNil(t, accepted.CourierID)
	assert.Equal(t, courier.ID.String(), *accepted.CourierID)

	rec = api.do(t, http.MethodPut, "/api/v1/orders/"+created.ID+"/status",
		httpadapter.ChangeStatusRequest{Status: "picked_up"}, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPut, "/api/v1/orders/"+created.ID+"/status",
		httpadapter.ChangeStatusRequest{Status: "delivered", Geo: &httpadapter.Location{Lat: 0.049, Lon: 0}}, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	delivered := decode[httpadapter.Order](t, rec)
	assert.Equal(t, "delivered", delivered.Status)
	assert.NotNil(t, delivered.DeliveredAt)

	rec = api.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, nil, client)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	details := decode[httpadapter.OrderDetails](t, rec)
	require.Len(t, details.History, 4)
	assert.Equal(t, []string{"pending", "assigned", "picked_up", "delivered"}, []string{
		details.History[0].To, details.History[1].To, details.History[2].To, details.History[3].To,
	})
	require.NotNil(t, details.History[3].Geo)
	assert.InDelta(t, 0.049, details.History[3].Geo.Lat, 1e-9)

	// the delivery queued exactly one credit task
	require.Len(t, api.store.Tasks(), 1)
}

func TestServer_ErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	client := newActor(kernel.RoleClient)
	courier := newActor(kernel.RoleCourier)
	rival := newActor(kernel.RoleCourier)

	o := api.createOrder(t, client)
	api.goOnline(t, courier)
	api.goOnline(t, rival)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/"+o.ID+"/accept", nil, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		actor  *kernel.Actor
		status int
		code   string
	}{
		{
			name:   "missing actor headers",
			method: http.MethodGet, path: "/api/v1/orders/" + o.ID,
			status: http.StatusUnauthorized, code: httpadapter.CodeUnauthenticated,
		},
		{
			name:   "system role is not accepted from callers",
			method: http.MethodGet, path: "/api/v1/orders/" + o.ID,
			actor:  &kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleSystem},
			status: http.StatusUnauthorized, code: httpadapter.CodeUnauthenticated,
		},
		{
			name:   "client cannot accept",
			method: http.MethodPost, path: "/api/v1/orders/" + o.ID + "/accept",
			actor:  client,
			status: http.StatusForbidden, code: "forbidden",
		},
		{
			name:   "malformed id",
			method: http.MethodGet, path: "/api/v1/orders/not-a-uuid",
			actor:  client,
			status: http.StatusBadRequest, code: "validation_error",
		},
		{
			name:   "unknown order",
			method: http.MethodGet, path: "/api/v1/orders/" + kernel.NewUUID().String(),
			actor:  client,
			status: http.StatusNotFound, code: "not_found",
		},
		{
			name:   "another client may not view the order",
			method: http.MethodGet, path: "/api/v1/orders/" + o.ID,
			actor:  newActor(kernel.RoleClient),
			status: http.StatusForbidden, code: "forbidden",
		},
		{
			name:   "second accept loses",
			method: http.MethodPost, path: "/api/v1/orders/" + o.ID + "/accept",
			actor:  rival,
			status: http.StatusConflict, code: "conflict",
		},
		{
			name:   "skipping pickup is an illegal transition",
			method: http.MethodPut, path: "/api/v1/orders/" + o.ID + "/status",
			body:   httpadapter.ChangeStatusRequest{Status: "delivered"},
			actor:  courier,
			status: http.StatusUnprocessableEntity, code: "state_error",
		},
		{
			name:   "body fails validation",
			method: http.MethodPost, path: "/api/v1/orders",
			body: httpadapter.CreateOrderRequest{
				Pickup:  httpadapter.Stop{Lat: 91, Lon: 0, Address: "x"},
				Dropoff: httpadapter.Stop{Lat: 0, Lon: 0},
			},
			actor:  client,
			status: http.StatusBadRequest, code: "validation_error",
		},
		{
			name:   "malformed json",
			method: http.MethodPost, path: "/api/v1/orders",
			body:   []byte(`{"pickup":`),
			actor:  client,
			status: http.StatusBadRequest, code: "validation_error",
		},
		{
			name:   "radius must be positive",
			method: http.MethodGet, path: "/api/v1/orders/available?lat=0&lon=0&radius_km=-1",
			actor:  courier,
			status: http.StatusBadRequest, code: "validation_error",
		},
		{
			name:   "missing coordinates",
			method: http.MethodGet, path: "/api/v1/couriers/nearby",
			actor:  newActor(kernel.RoleAdmin),
			status: http.StatusBadRequest, code: "validation_error",
		},
		{
			name:   "unknown route",
			method: http.MethodGet, path: "/api/v1/nowhere",
			status: http.StatusNotFound, code: "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.body, tt.actor)
			requireError(t, rec, tt.status, tt.code)
		})
	}
}

func TestServer_CancelBoundary(t *testing.T) {
	api := newTestAPI(t)
	client := newActor(kernel.RoleClient)

	o := api.createOrder(t, client)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/"+o.ID+"/cancel", httpadapter.CancelRequest{Reason: "changed my mind"}, client)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[httpadapter.Order](t, rec)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)

	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+o.ID+"/cancel", nil, client)
	requireError(t, rec, http.StatusConflict, "conflict")
}

func TestServer_ClientCancelsThroughStatusChange(t *testing.T) {
	api := newTestAPI(t)
	client := newActor(kernel.RoleClient)
	courier := newActor(kernel.RoleCourier)

	o := api.createOrder(t, client)
	api.goOnline(t, courier)
	rec := api.do(t, http.MethodPost, "/api/v1/orders/"+o.ID+"/accept", nil, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPut, "/api/v1/orders/"+o.ID+"/status",
		httpadapter.ChangeStatusRequest{Status: "picked_up"}, client)
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(t, http.MethodPut, "/api/v1/orders/"+o.ID+"/status",
		httpadapter.ChangeStatusRequest{Status: "cancelled"}, newActor(kernel.RoleClient))
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(t, http.MethodPut, "/api/v1/orders/"+o.ID+"/status",
		httpadapter.ChangeStatusRequest{Status: "cancelled"}, client)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cancelled", decode[httpadapter.Order](t, rec).Status)
}

func TestServer_WithdrawalWorkflow(t *testing.T) {
	api := newTestAPI(t)
	courier := newActor(kernel.RoleCourier)
	admin := newActor(kernel.RoleAdmin)
	api.credit(t, courier.ID, 5000)

	rec := api.do(t, http.MethodPost, "/api/v1/wallet/withdraw",
		httpadapter.WithdrawRequest{Amount: 500, Method: "bank_transfer", Destination: "DE89"}, courier)
	requireError(t, rec, http.StatusBadRequest, "validation_error")

	rec = api.do(t, http.MethodPost, "/api/v1/wallet/withdraw",
		httpadapter.WithdrawRequest{Amount: 9000, Method: "bank_transfer", Destination: "DE89"}, courier)
	requireError(t, rec, http.StatusPaymentRequired, "insufficient_balance")

	rec = api.do(t, http.MethodPost, "/api/v1/wallet/withdraw",
		httpadapter.WithdrawRequest{Amount: 2000, Method: "bank_transfer", Destination: "DE89"}, courier)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requested := decode[httpadapter.Withdrawal](t, rec)
	assert.Equal(t, "pending", requested.Status)

	rec = api.do(t, http.MethodGet, "/api/v1/wallet", nil, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	w := decode[httpadapter.Wallet](t, rec)
	assert.EqualValues(t, 3000, w.Balance)
	assert.EqualValues(t, 2000, w.PendingBalance)
	assert.EqualValues(t, 5000, w.TotalEarned)
	assert.Len(t, w.Credits, 1)

	rec = api.do(t, http.MethodGet, "/api/v1/withdrawals?status=pending", nil, courier)
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(t, http.MethodGet, "/api/v1/withdrawals?status=pending", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pending := decode[[]httpadapter.Withdrawal](t, rec)
	require.Len(t, pending, 1)
	assert.Equal(t, requested.ID, pending[0].ID)

	rec = api.do(t, http.MethodPost, "/api/v1/withdrawals/"+requested.ID+"/approve", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[httpadapter.Withdrawal](t, rec)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApproverID)
	assert.Equal(t, admin.ID.String(), *approved.ApproverID)

	rec = api.do(t, http.MethodPost, "/api/v1/withdrawals/"+requested.ID+"/reject",
		httpadapter.RejectRequest{Reason: "too late"}, admin)
	requireError(t, rec, http.StatusConflict, "conflict")

	settlement := []byte(`{"withdrawal_id":"` + requested.ID + `","status":"succeeded","provider_reference":"PAY-1"}`)

	forged := httptest.NewRequest(http.MethodPost, "/webhooks/settlement", bytes.NewReader(settlement))
	forged.Header.Set("X-Signature", commands.SignSettlement("wrong-secret", settlement))
	rec = httptest.NewRecorder()
	api.e.ServeHTTP(rec, forged)
	requireError(t, rec, http.StatusUnauthorized, "external_error")

	signed := httptest.NewRequest(http.MethodPost, "/webhooks/settlement", bytes.NewReader(settlement))
	signed.Header.Set("X-Signature", commands.SignSettlement(webhookSecret, settlement))
	rec = httptest.NewRecorder()
	api.e.ServeHTTP(rec, signed)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[httpadapter.Withdrawal](t, rec)
	assert.Equal(t, "completed", completed.Status)
	assert.Equal(t, "PAY-1", completed.TransactionReference)

	rec = api.do(t, http.MethodGet, "/api/v1/wallet/withdrawals", nil, courier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mine := decode[[]httpadapter.Withdrawal](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, "completed", mine[0].Status)

	snapshot, ok := api.store.Wallet(courier.ID)
	require.True(t, ok)
	assert.EqualValues(t, 3000, snapshot.Balance)
	assert.EqualValues(t, 0, snapshot.PendingBalance)
	assert.EqualValues(t, 2000, snapshot.TotalWithdrawn)
}

func TestServer_FailedCreditTasks(t *testing.T) {
	api := newTestAPI(t)
	admin := newActor(kernel.RoleAdmin)

	now := time.Now()
	task, err := credittask.NewTask(kernel.NewUUID(), now)
	require.NoError(t, err)
	repo := api.store.Factory().Create().CreditTaskRepository()
	_, err = repo.Enqueue(t.Context(), task)
	require.NoError(t, err)
	require.True(t, task.Fail(errors.New("wallet locked"), credittask.RetryPolicy{MaxRetries: 0, Backoff: time.Minute}, now))
	require.NoError(t, repo.Update(t.Context(), task))

	rec := api.do(t, http.MethodGet, "/api/v1/admin/credit-tasks/failed", nil, newActor(kernel.RoleCourier))
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(t, http.MethodGet, "/api/v1/admin/credit-tasks/failed", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	failed := decode[[]httpadapter.CreditTask](t, rec)
	require.Len(t, failed, 1)
	assert.Equal(t, task.ID.String(), failed[0].ID)
	assert.Equal(t, "wallet locked", failed[0].LastError)

	rec = api.do(t, http.MethodPost, "/api/v1/admin/credit-tasks/"+task.ID.String()+"/retry", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	retried := decode[httpadapter.CreditTask](t, rec)
	assert.Equal(t, "queued", retried.Status)
	assert.Zero(t, retried.Attempts)

	rec = api.do(t, http.MethodPost, "/api/v1/admin/credit-tasks/"+task.ID.String()+"/retry", nil, admin)
	requireError(t, rec, http.StatusConflict, "conflict")
}

func TestServer_NearbyCouriers(t *testing.T) {
	api := newTestAPI(t)
	near := newActor(kernel.RoleCourier)
	api.goOnline(t, near)

	rec := api.do(t, http.MethodGet, "/api/v1/couriers/nearby?lat=0&lon=0&limit=5", nil, newActor(kernel.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	matches := decode[[]httpadapter.CourierMatch](t, rec)
	require.Len(t, matches, 1)
	assert.Equal(t, near.ID.String(), matches[0].Courier.ID)
	assert.Equal(t, "bicycle", matches[0].Courier.Vehicle)
	assert.Positive(t, matches[0].DistanceKm)
}

func TestServer_OperationalEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "3.0.3", doc["openapi"])

	api.createOrder(t, newActor(kernel.RoleClient))
	rec = api.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `http_requests_total{method="POST",path="/api/v1/orders",status="201"} 1`),
		rec.Body.String())
}

func TestGetSwagger_DocumentsEveryRoute(t *testing.T) {
	api := newTestAPI(t)
	spec, err := httpadapter.GetSwagger()
	require.NoError(t, err)

	undocumented := map[string]bool{"/metrics": true, "/openapi.json": true, "/swagger/*": true}
	for _, route := range api.e.Routes() {
		if undocumented[route.Path] {
			continue
		}
		path := strings.ReplaceAll(route.Path, ":id", "{id}")
		item := spec.Paths.Find(path)
		require.NotNil(t, item, "route %s %s is not documented", route.Method, route.Path)
		assert.NotNil(t, item.GetOperation(route.Method), "route %s %s is not documented", route.Method, route.Path)
	}
}
