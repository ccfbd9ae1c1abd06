package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// NearbyParams defines parameters for ListAvailableOrders and ListNearbyCouriers.
type NearbyParams struct {
	Lat      float64  `form:"lat" json:"lat"`
	Lon      float64  `form:"lon" json:"lon"`
	RadiusKm *float64 `form:"radius_km,omitempty" json:"radius_km,omitempty"`
	Limit    *int     `form:"limit,omitempty" json:"limit,omitempty"`
}

// PageParams defines the offset window of list endpoints.
type PageParams struct {
	Limit  *int `form:"limit,omitempty" json:"limit,omitempty"`
	Offset *int `form:"offset,omitempty" json:"offset,omitempty"`
}

// ListWithdrawalsParams defines parameters for ListWithdrawals.
type ListWithdrawalsParams struct {
	Status *string `form:"status,omitempty" json:"status,omitempty"`
	PageParams
}

// RecordSettlementParams defines parameters for RecordSettlement.
type RecordSettlementParams struct {
	XSignature *string `json:"X-Signature,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// (GET /api/v1/orders/available)
	ListAvailableOrders(ctx echo.Context, params NearbyParams) error
	// (GET /api/v1/orders/{id})
	GetOrder(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/orders/{id}/accept)
	AcceptOrder(ctx echo.Context, id openapi_types.UUID) error
	// (PUT /api/v1/orders/{id}/status)
	ChangeOrderStatus(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/orders/{id}/cancel)
	CancelOrder(ctx echo.Context, id openapi_types.UUID) error
	// (GET /api/v1/couriers/nearby)
	ListNearbyCouriers(ctx echo.Context, params NearbyParams) error
	// (PUT /api/v1/couriers/me/location)
	UpdateCourierLocation(ctx echo.Context) error
	// (GET /api/v1/wallet)
	GetWallet(ctx echo.Context, params PageParams) error
	// (POST /api/v1/wallet/withdraw)
	RequestWithdrawal(ctx echo.Context) error
	// (GET /api/v1/wallet/withdrawals)
	ListMyWithdrawals(ctx echo.Context, params PageParams) error
	// (GET /api/v1/withdrawals)
	ListWithdrawals(ctx echo.Context, params ListWithdrawalsParams) error
	// (POST /api/v1/withdrawals/{id}/approve)
	ApproveWithdrawal(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/withdrawals/{id}/reject)
	RejectWithdrawal(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/withdrawals/{id}/complete)
	CompleteWithdrawal(ctx echo.Context, id openapi_types.UUID) error
	// (GET /api/v1/admin/credit-tasks/failed)
	ListFailedCreditTasks(ctx echo.Context, params PageParams) error
	// (POST /api/v1/admin/credit-tasks/{id}/retry)
	RetryCreditTask(ctx echo.Context, id openapi_types.UUID) error
	// (POST /webhooks/settlement)
	RecordSettlement(ctx echo.Context, params RecordSettlementParams) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) ListAvailableOrders(ctx echo.Context) error {
	params, err := bindNearbyParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ListAvailableOrders(ctx, params)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, id)
}

func (w *ServerInterfaceWrapper) AcceptOrder(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.AcceptOrder(ctx, id)
}

func (w *ServerInterfaceWrapper) ChangeOrderStatus(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ChangeOrderStatus(ctx, id)
}

func (w *ServerInterfaceWrapper) CancelOrder(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.CancelOrder(ctx, id)
}

func (w *ServerInterfaceWrapper) ListNearbyCouriers(ctx echo.Context) error {
	params, err := bindNearbyParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ListNearbyCouriers(ctx, params)
}

func (w *ServerInterfaceWrapper) UpdateCourierLocation(ctx echo.Context) error {
	return w.Handler.UpdateCourierLocation(ctx)
}

func (w *ServerInterfaceWrapper) GetWallet(ctx echo.Context) error {
	params, err := bindPageParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetWallet(ctx, params)
}

func (w *ServerInterfaceWrapper) RequestWithdrawal(ctx echo.Context) error {
	return w.Handler.RequestWithdrawal(ctx)
}

func (w *ServerInterfaceWrapper) ListMyWithdrawals(ctx echo.Context) error {
	params, err := bindPageParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ListMyWithdrawals(ctx, params)
}

func (w *ServerInterfaceWrapper) ListWithdrawals(ctx echo.Context) error {
	var params ListWithdrawalsParams

	err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}
	if params.PageParams, err = bindPageParams(ctx); err != nil {
		return err
	}
	return w.Handler.ListWithdrawals(ctx, params)
}

func (w *ServerInterfaceWrapper) ApproveWithdrawal(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ApproveWithdrawal(ctx, id)
}

func (w *ServerInterfaceWrapper) RejectWithdrawal(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.RejectWithdrawal(ctx, id)
}

func (w *ServerInterfaceWrapper) CompleteWithdrawal(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.CompleteWithdrawal(ctx, id)
}

func (w *ServerInterfaceWrapper) ListFailedCreditTasks(ctx echo.Context) error {
	params, err := bindPageParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ListFailedCreditTasks(ctx, params)
}

func (w *ServerInterfaceWrapper) RetryCreditTask(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.RetryCreditTask(ctx, id)
}

func (w *ServerInterfaceWrapper) RecordSettlement(ctx echo.Context) error {
	var params RecordSettlementParams

	headers := ctx.Request().Header
	if valueList, found := headers[http.CanonicalHeaderKey("X-Signature")]; found {
		var signature string
		if n := len(valueList); n != 1 {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Expected one value for X-Signature, got %d", n))
		}
		err := runtime.BindStyledParameterWithOptions("simple", "X-Signature", valueList[0], &signature,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter X-Signature: %s", err))
		}
		params.XSignature = &signature
	}
	return w.Handler.RecordSettlement(ctx, params)
}

// EchoRouter is the subset of echo.Echo and echo.Group used to register handlers.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers and prepends baseURL to the paths,
// so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/api/v1/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/api/v1/orders/available", wrapper.ListAvailableOrders)
	router.GET(baseURL+"/api/v1/orders/:id", wrapper.GetOrder)
	router.POST(baseURL+"/api/v1/orders/:id/accept", wrapper.AcceptOrder)
	router.PUT(baseURL+"/api/v1/orders/:id/status", wrapper.ChangeOrderStatus)
	router.POST(baseURL+"/api/v1/orders/:id/cancel", wrapper.CancelOrder)
	router.GET(baseURL+"/api/v1/couriers/nearby", wrapper.ListNearbyCouriers)
	router.PUT(baseURL+"/api/v1/couriers/me/location", wrapper.UpdateCourierLocation)
	router.GET(baseURL+"/api/v1/wallet", wrapper.GetWallet)
	router.POST(baseURL+"/api/v1/wallet/withdraw", wrapper.RequestWithdrawal)
	router.GET(baseURL+"/api/v1/wallet/withdrawals", wrapper.ListMyWithdrawals)
	router.GET(baseURL+"/api/v1/withdrawals", wrapper.ListWithdrawals)
	router.POST(baseURL+"/api/v1/withdrawals/:id/approve", wrapper.ApproveWithdrawal)
	router.POST(baseURL+"/api/v1/withdrawals/:id/reject", wrapper.RejectWithdrawal)
	router.POST(baseURL+"/api/v1/withdrawals/:id/complete", wrapper.CompleteWithdrawal)
	router.GET(baseURL+"/api/v1/admin/credit-tasks/failed", wrapper.ListFailedCreditTasks)
	router.POST(baseURL+"/api/v1/admin/credit-tasks/:id/retry", wrapper.RetryCreditTask)
	router.POST(baseURL+"/webhooks/settlement", wrapper.RecordSettlement)
}

func bindID(ctx echo.Context) (openapi_types.UUID, error) {
	var id openapi_types.UUID

	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}

func bindNearbyParams(ctx echo.Context) (NearbyParams, error) {
	var params NearbyParams

	if err := runtime.BindQueryParameter("form", true, true, "lat", ctx.QueryParams(), &params.Lat); err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter lat: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, true, "lon", ctx.QueryParams(), &params.Lon); err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter lon: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "radius_km", ctx.QueryParams(), &params.RadiusKm); err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter radius_km: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit); err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	return params, nil
}

func bindPageParams(ctx echo.Context) (PageParams, error) {
	var params PageParams

	if err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit); err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", ctx.QueryParams(), &params.Offset); err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter offset: %s", err))
	}
	return params, nil
}
