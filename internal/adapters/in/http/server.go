package http

import (
	"io"
	"net/http"

	"courierhub/internal/core/application/usecases/commands"
	"courierhub/internal/core/application/usecases/queries"
	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateOrder       commands.CreateOrderCommandHandler
	AcceptOrder       commands.AcceptOrderCommandHandler
	ChangeOrderStatus commands.ChangeOrderStatusCommandHandler
	CancelOrder       commands.CancelOrderCommandHandler
	UpdateLocation    commands.UpdateCourierLocationCommandHandler
	RequestWithdrawal commands.RequestWithdrawalCommandHandler
	ReviewWithdrawal  commands.ReviewWithdrawalCommandHandler
	RecordSettlement  commands.RecordSettlementCommandHandler
	RetryCreditTask   commands.RetryFailedCreditTaskCommandHandler
	GetOrder          queries.GetOrderQueryHandler
	AvailableOrders   queries.AvailableOrdersQueryHandler
	NearbyCouriers    queries.NearbyCouriersQueryHandler
	GetWallet         queries.GetWalletQueryHandler
	ListWithdrawals   queries.ListWithdrawalsQueryHandler
	ListFailedTasks   queries.ListFailedCreditTasksQueryHandler
}

// Server implements ServerInterface for handling HTTP requests.
// It translates requests into commands and queries and domain objects into responses.
type Server struct {
	h Handlers
}

var _ ServerInterface = (*Server)(nil)

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// CreateOrder handles POST /api/v1/orders - a client books a delivery.
func (s *Server) CreateOrder(ctx echo.Context) error {
	actor, err := actorFrom(ctx, kernel.RoleClient)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	pickup, err := req.Pickup.toDomain()
	if err != nil {
		return err
	}
	dropoff, err := req.Dropoff.toDomain()
	if err != nil {
		return err
	}
	pkg, err := order.NewPackage(req.Package.Description, order.Size(req.Package.Size), req.Package.WeightKg)
	if err != nil {
		return err
	}
	var zoneID *kernel.UUID
	if req.ZoneID != nil {
		id, err := kernel.ParseUUID(*req.ZoneID)
		if err != nil {
			return err
		}
		zoneID = &id
	}

	cmd, err := commands.NewCreateOrderCommand(actor.ID, pickup, dropoff, pkg, zoneID)
	if err != nil {
		return err
	}
	o, err := s.h.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, orderFromDomain(o))
}

// ListAvailableOrders handles GET /api/v1/orders/available - pending orders near a courier.
func (s *Server) ListAvailableOrders(ctx echo.Context, params NearbyParams) error {
	if _, err := actorFrom(ctx, kernel.RoleCourier); err != nil {
		return err
	}
	query, err := nearbyQuery(params)
	if err != nil {
		return err
	}
	matches, err := s.h.AvailableOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orderMatchesFromDomain(matches))
}

// GetOrder handles GET /api/v1/orders/{id}.
func (s *Server) GetOrder(ctx echo.Context, id openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	orderID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(actor, orderID)
	if err != nil {
		return err
	}
	view, err := s.h.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, OrderDetails{
		Order:   orderFromDomain(view.Order),
		History: historyFromDomain(view.History),
	})
}

// AcceptOrder handles POST /api/v1/orders/{id}/accept - the calling courier claims the order.
func (s *Server) AcceptOrder(ctx echo.Context, id openapi_types.UUID) error {
	actor, err := actorFrom(ctx, kernel.RoleCourier)
	if err != nil {
		return err
	}
	orderID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAcceptOrderCommand(actor.ID, orderID)
	if err != nil {
		return err
	}
	o, err := s.h.AcceptOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orderFromDomain(o))
}

// ChangeOrderStatus handles PUT /api/v1/orders/{id}/status. Clients are let through so
// they can cancel; the order decides which transitions each participant may request.
func (s *Server) ChangeOrderStatus(ctx echo.Context, id openapi_types.UUID) error {
	actor, err := actorFrom(ctx, kernel.RoleClient, kernel.RoleCourier, kernel.RoleAdmin)
	if err != nil {
		return err
	}
	orderID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}

	var req ChangeStatusRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	var geo *kernel.Location
	if req.Geo != nil {
		loc, err := toKernelLocation(*req.Geo)
		if err != nil {
			return err
		}
		geo = &loc
	}

	cmd, err := commands.NewChangeOrderStatusCommand(actor, orderID, order.Status(req.Status), geo)
	if err != nil {
		return err
	}
	o, err := s.h.ChangeOrderStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orderFromDomain(o))
}

// CancelOrder handles POST /api/v1/orders/{id}/cancel. Who may cancel is decided by the order.
func (s *Server) CancelOrder(ctx echo.Context, id openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	orderID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}

	var req CancelRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	cmd, err := commands.NewCancelOrderCommand(actor, orderID, req.Reason)
	if err != nil {
		return err
	}
	o, err := s.h.CancelOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orderFromDomain(o))
}

// ListNearbyCouriers handles GET /api/v1/couriers/nearby - admin dispatch view.
func (s *Server) ListNearbyCouriers(ctx echo.Context, params NearbyParams) error {
	if _, err := actorFrom(ctx, kernel.RoleAdmin); err != nil {
		return err
	}
	query, err := nearbyQuery(params)
	if err != nil {
		return err
	}
	matches, err := s.h.NearbyCouriers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courierMatchesFromDomain(matches))
}

// UpdateCourierLocation handles PUT /api/v1/couriers/me/location.
func (s *Server) UpdateCourierLocation(ctx echo.Context) error {
	actor, err := actorFrom(ctx, kernel.RoleCourier)
	if err != nil {
		return err
	}

	var req UpdateLocationRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	loc, err := kernel.NewLocation(req.Lat, req.Lon)
	if err != nil {
		return err
	}
	cmd, err := commands.NewUpdateCourierLocationCommand(actor.ID, loc, req.Available, req.Name, courier.Vehicle(req.Vehicle))
	if err != nil {
		return err
	}
	c, err := s.h.UpdateLocation.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courierFromDomain(c))
}

// GetWallet handles GET /api/v1/wallet.
func (s *Server) GetWallet(ctx echo.Context, params PageParams) error {
	actor, err := actorFrom(ctx, kernel.RoleCourier)
	if err != nil {
		return err
	}
	query, err := queries.NewGetWalletQuery(actor.ID, toPage(params))
	if err != nil {
		return err
	}
	view, err := s.h.GetWallet.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, walletFromDomain(view.Wallet, view.Credits))
}

// RequestWithdrawal handles POST /api/v1/wallet/withdraw.
func (s *Server) RequestWithdrawal(ctx echo.Context) error {
	actor, err := actorFrom(ctx, kernel.RoleCourier)
	if err != nil {
		return err
	}

	var req WithdrawRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	cmd, err := commands.NewRequestWithdrawalCommand(actor.ID, kernel.Money(req.Amount), withdrawal.Method(req.Method), req.Destination)
	if err != nil {
		return err
	}
	w, err := s.h.RequestWithdrawal.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, withdrawalFromDomain(w))
}

// ListMyWithdrawals handles GET /api/v1/wallet/withdrawals.
func (s *Server) ListMyWithdrawals(ctx echo.Context, params PageParams) error {
	actor, err := actorFrom(ctx, kernel.RoleCourier)
	if err != nil {
		return err
	}
	query, err := queries.NewListCourierWithdrawalsQuery(actor.ID, toPage(params))
	if err != nil {
		return err
	}
	ws, err := s.h.ListWithdrawals.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, withdrawalsFromDomain(ws))
}

// ListWithdrawals handles GET /api/v1/withdrawals - the admin review queue.
func (s *Server) ListWithdrawals(ctx echo.Context, params ListWithdrawalsParams) error {
	if _, err := actorFrom(ctx, kernel.RoleAdmin); err != nil {
		return err
	}
	var status string
	if params.Status != nil {
		status = *params.Status
	}
	query, err := queries.NewListWithdrawalsQuery(status, toPage(params.PageParams))
	if err != nil {
		return err
	}
	ws, err := s.h.ListWithdrawals.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, withdrawalsFromDomain(ws))
}

// ApproveWithdrawal handles POST /api/v1/withdrawals/{id}/approve.
func (s *Server) ApproveWithdrawal(ctx echo.Context, id openapi_types.UUID) error {
	admin, err := actorFrom(ctx, kernel.RoleAdmin)
	if err != nil {
		return err
	}
	withdrawalID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}
	cmd, err := commands.NewApproveWithdrawalCommand(admin.ID, withdrawalID)
	if err != nil {
		return err
	}
	w, err := s.h.ReviewWithdrawal.Approve(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, withdrawalFromDomain(w))
}

// RejectWithdrawal handles POST /api/v1/withdrawals/{id}/reject.
func (s *Server) RejectWithdrawal(ctx echo.Context, id openapi_types.UUID) error {
	admin, err := actorFrom(ctx, kernel.RoleAdmin)
	if err != nil {
		return err
	}
	withdrawalID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}

	var req RejectRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	cmd, err := commands.NewRejectWithdrawalCommand(admin.ID, withdrawalID, req.Reason)
	if err != nil {
		return err
	}
	w, err := s.h.ReviewWithdrawal.Reject(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, withdrawalFromDomain(w))
}

// CompleteWithdrawal handles POST /api/v1/withdrawals/{id}/complete - manual payout confirmation.
func (s *Server) CompleteWithdrawal(ctx echo.Context, id openapi_types.UUID) error {
	if _, err := actorFrom(ctx, kernel.RoleAdmin); err != nil {
		return err
	}
	withdrawalID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}

	var req CompleteRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	cmd, err := commands.NewCompleteWithdrawalCommand(withdrawalID, req.ProviderReference)
	if err != nil {
		return err
	}
	w, err := s.h.ReviewWithdrawal.Complete(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, withdrawalFromDomain(w))
}

// ListFailedCreditTasks handles GET /api/v1/admin/credit-tasks/failed.
func (s *Server) ListFailedCreditTasks(ctx echo.Context, params PageParams) error {
	if _, err := actorFrom(ctx, kernel.RoleAdmin); err != nil {
		return err
	}
	tasks, err := s.h.ListFailedTasks.Handle(ctx.Request().Context(), queries.NewListFailedCreditTasksQuery(toPage(params)))
	if err != nil {
		return err
	}
	out := make([]CreditTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, creditTaskFromDomain(t))
	}
	return ctx.JSON(http.StatusOK, out)
}

// RetryCreditTask handles POST /api/v1/admin/credit-tasks/{id}/retry.
func (s *Server) RetryCreditTask(ctx echo.Context, id openapi_types.UUID) error {
	if _, err := actorFrom(ctx, kernel.RoleAdmin); err != nil {
		return err
	}
	taskID, err := kernel.UUIDFrom(id)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRetryFailedCreditTaskCommand(taskID)
	if err != nil {
		return err
	}
	task, err := s.h.RetryCreditTask.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, creditTaskFromDomain(task))
}

// RecordSettlement handles POST /webhooks/settlement. The signature covers the raw body,
// so the body is passed on unparsed.
func (s *Server) RecordSettlement(ctx echo.Context, params RecordSettlementParams) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	var signature string
	if params.XSignature != nil {
		signature = *params.XSignature
	}

	cmd, err := commands.NewRecordSettlementCommand(body, signature)
	if err != nil {
		return err
	}
	w, err := s.h.RecordSettlement.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, withdrawalFromDomain(w))
}

func nearbyQuery(params NearbyParams) (queries.NearbyQuery, error) {
	origin, err := kernel.NewLocation(params.Lat, params.Lon)
	if err != nil {
		return queries.NearbyQuery{}, err
	}
	var radius float64
	if params.RadiusKm != nil {
		radius = *params.RadiusKm
	}
	var limit int
	if params.Limit != nil {
		limit = *params.Limit
	}
	return queries.NewNearbyQuery(origin, radius, limit)
}
