package commands_test

import (
	"sync"
	"testing"
	"time"

	"courierhub/internal/core/application/usecases/commands"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderCommandHandler_PricesAndRecordsHistory(t *testing.T) {
	f := newFixture(t)
	clientID := kernel.NewUUID()

	o := f.createOrder(t, clientID)

	assert.Equal(t, order.Pending, o.Status())
	assert.Nil(t, o.CourierID())
	assert.Equal(t, f.zoneID, o.ZoneID())
	assert.EqualValues(t, 1600, o.Price().TotalPrice)
	assert.EqualValues(t, 240, o.Price().PlatformFee)
	assert.EqualValues(t, 1360, o.Price().CourierEarnings)

	history := f.store.History()
	require.Len(t, history, 1)
	assert.Equal(t, order.Status(""), history[0].From)
	assert.Equal(t, order.Pending, history[0].To)
	assert.Equal(t, clientID, history[0].Actor.ID)
	assert.Equal(t, []string{order.EventCreated}, f.store.EventNames())
}

func TestCreateOrderCommandHandler_UnknownZone(t *testing.T) {
	f := newFixture(t)
	loc, err := kernel.NewLocation(1, 1)
	require.NoError(t, err)
	stop, err := order.NewStop(loc, "somewhere", "", "")
	require.NoError(t, err)
	pkg, err := order.NewPackage("", "", 0)
	require.NoError(t, err)

	unknown := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), stop, stop, pkg, &unknown)
	require.NoError(t, err)

	_, err = commands.NewCreateOrderCommandHandler(f.factory, f.pricing(t), f.zoneID).Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Empty(t, f.store.History())
	assert.Empty(t, f.store.Events())
}

func TestCreateOrderCommandHandler_NotConstructed(t *testing.T) {
	f := newFixture(t)
	_, err := commands.NewCreateOrderCommandHandler(f.factory, f.pricing(t), f.zoneID).
		Handle(t.Context(), commands.CreateOrderCommand{})
	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
}

func TestNewCreateOrderCommand_InvalidStop(t *testing.T) {
	pkg, err := order.NewPackage("", order.SizeSmall, 0)
	require.NoError(t, err)
	_, err = commands.NewCreateOrderCommand(kernel.NewUUID(), order.Stop{}, order.Stop{}, pkg, nil)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestAcceptOrderCommandHandler_AssignsCourier(t *testing.T) {
	f := newFixture(t)
	courierID := f.courier(t, true)
	o := f.createOrder(t, kernel.NewUUID())

	accepted := f.accept(t, courierID, o.ID())

	assert.Equal(t, order.Assigned, accepted.Status())
	require.NotNil(t, accepted.CourierID())
	assert.Equal(t, courierID, *accepted.CourierID())
	assert.NotNil(t, accepted.AssignedAt())
	assert.Equal(t, []string{order.EventCreated, order.EventAssigned}, f.store.EventNames())
}

func TestAcceptOrderCommandHandler_UnavailableCourier(t *testing.T) {
	f := newFixture(t)
	offline := f.courier(t, false)
	o := f.createOrder(t, kernel.NewUUID())

	cmd, err := commands.NewAcceptOrderCommand(offline, o.ID())
	require.NoError(t, err)
	_, err = commands.NewAcceptOrderCommandHandler(f.factory).Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrConflict)

	unknown, err := commands.NewAcceptOrderCommand(kernel.NewUUID(), o.ID())
	require.NoError(t, err)
	_, err = commands.NewAcceptOrderCommandHandler(f.factory).Handle(t.Context(), unknown)
	require.ErrorIs(t, err, commands.ErrCourierIsNotAvailable)
}

func TestAcceptOrderCommandHandler_ConcurrentAcceptsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	o := f.createOrder(t, kernel.NewUUID())
	couriers := []kernel.UUID{f.courier(t, true), f.courier(t, true)}
	handler := commands.NewAcceptOrderCommandHandler(f.factory)

	results := make([]error, len(couriers))
	var wg sync.WaitGroup
	for i, courierID := range couriers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd, err := commands.NewAcceptOrderCommand(courierID, o.ID())
			if err != nil {
				results[i] = err
				return
			}
			_, results[i] = handler.Handle(t.Context(), cmd)
		}()
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(t, err, order.ErrAlreadyAssigned):
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	assigned := 0
	for _, entry := range f.store.History() {
		if entry.To == order.Assigned {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned)
}

func TestChangeOrderStatusCommandHandler_FullLifecycle(t *testing.T) {
	f := newFixture(t)

	o, courierID := f.deliveredOrder(t)

	assert.Equal(t, order.Delivered, o.Status())
	assert.Equal(t, courierID, *o.CourierID())
	assert.NotNil(t, o.PickedUpAt())
	assert.NotNil(t, o.DeliveredAt())

	history := f.store.History()
	require.Len(t, history, 4)
	for _, entry := range history[1:] {
		assert.True(t, order.CanTransition(entry.From, entry.To), "%s -> %s", entry.From, entry.To)
	}

	tasks := f.store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, o.ID(), tasks[0].OrderID)
	assert.Equal(t, "credit:"+o.ID().String(), tasks[0].IdempotencyKey)
	assert.Contains(t, f.store.EventNames(), order.EventDelivered)
}

func TestChangeOrderStatusCommandHandler_StoresGeoStamp(t *testing.T) {
	f := newFixture(t)
	courierID := f.courier(t, true)
	o := f.createOrder(t, kernel.NewUUID())
	f.accept(t, courierID, o.ID())

	geo, err := kernel.NewLocation(0.0001, 0.0002)
	require.NoError(t, err)
	cmd, err := commands.NewChangeOrderStatusCommand(
		kernel.Actor{ID: courierID, Role: kernel.RoleCourier}, o.ID(), order.PickedUp, &geo)
	require.NoError(t, err)
	_, err = commands.NewChangeOrderStatusCommandHandler(f.factory).Handle(t.Context(), cmd)
	require.NoError(t, err)

	history := f.store.History()
	last := history[len(history)-1]
	require.NotNil(t, last.GeoStamp)
	assert.InDelta(t, 0.0002, last.GeoStamp.Lon(), 1e-9)
}

func TestChangeOrderStatusCommandHandler_Rejections(t *testing.T) {
	f := newFixture(t)
	courierID := f.courier(t, true)
	o := f.createOrder(t, kernel.NewUUID())
	f.accept(t, courierID, o.ID())

	stranger := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCourier}
	_, err := f.changeStatus(stranger, o.ID(), order.PickedUp)
	require.ErrorIs(t, err, errs.ErrForbidden)

	assigned := kernel.Actor{ID: courierID, Role: kernel.RoleCourier}
	_, err = f.changeStatus(assigned, o.ID(), order.Delivered)
	require.ErrorIs(t, err, errs.ErrIllegalTransition)

	admin := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}
	_, err = f.changeStatus(admin, o.ID(), order.Assigned)
	require.ErrorIs(t, err, errs.ErrForbidden)

	assert.Len(t, f.store.History(), 2)
	assert.Empty(t, f.store.Tasks())
}

func TestCancelOrderCommandHandler_Boundary(t *testing.T) {
	f := newFixture(t)
	courierID := f.courier(t, true)
	o := f.createOrder(t, kernel.NewUUID())
	f.accept(t, courierID, o.ID())
	courier := kernel.Actor{ID: courierID, Role: kernel.RoleCourier}
	_, err := f.changeStatus(courier, o.ID(), order.PickedUp)
	require.NoError(t, err)

	cancel := func(actor kernel.Actor, id kernel.UUID) (*order.Order, error) {
		cmd, err := commands.NewCancelOrderCommand(actor, id, "  customer unreachable ")
		require.NoError(t, err)
		return commands.NewCancelOrderCommandHandler(f.factory).Handle(t.Context(), cmd)
	}

	cancelled, err := cancel(courier, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, cancelled.Status())
	assert.Nil(t, cancelled.CourierID())
	assert.Equal(t, "customer unreachable", cancelled.CancellationReason())

	admin := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}
	_, err = cancel(admin, o.ID())
	require.ErrorIs(t, err, errs.ErrConflict)

	delivered, _ := f.deliveredOrder(t)
	_, err = cancel(admin, delivered.ID())
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestCancelOrderCommandHandler_NonParticipantIsForbidden(t *testing.T) {
	f := newFixture(t)
	o := f.createOrder(t, kernel.NewUUID())

	cmd, err := commands.NewCancelOrderCommand(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleClient}, o.ID(), "")
	require.NoError(t, err)
	_, err = commands.NewCancelOrderCommandHandler(f.factory).Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestExpireStaleOrdersCommandHandler_CancelsOnlyStalePending(t *testing.T) {
	f := newFixture(t)
	stale := f.createOrder(t, kernel.NewUUID())
	taken := f.createOrder(t, kernel.NewUUID())
	f.accept(t, f.courier(t, true), taken.ID())

	handler := commands.NewExpireStaleOrdersCommandHandler(f.factory, nil)

	early, err := commands.NewExpireStaleOrdersCommand(time.Now().Add(time.Hour), 0, 0)
	require.NoError(t, err)
	result, err := handler.Handle(t.Context(), early)
	require.NoError(t, err)
	assert.Zero(t, result.Candidates)

	later, err := commands.NewExpireStaleOrdersCommand(time.Now().Add(25*time.Hour), 0, 0)
	require.NoError(t, err)
	result, err = handler.Handle(t.Context(), later)
	require.NoError(t, err)
	assert.Equal(t, commands.ExpireStaleOrdersResult{Candidates: 1, Expired: 1}, result)

	o, err := f.factory.Create().OrderRepository().Get(t.Context(), stale.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, o.Status())
	assert.Equal(t, commands.ExpiredReason, o.CancellationReason())

	history := f.store.History()
	last := history[len(history)-1]
	assert.Equal(t, kernel.RoleSystem, last.Actor.Role)

	result, err = handler.Handle(t.Context(), later)
	require.NoError(t, err)
	assert.Zero(t, result.Candidates)
}

func TestExpireStaleOrdersCommandHandler_ContinuesAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.createOrder(t, kernel.NewUUID())
	f.createOrder(t, kernel.NewUUID())
	f.store.FailNext("orders.GetForUpdate", assert.AnError)

	cmd, err := commands.NewExpireStaleOrdersCommand(time.Now().Add(48*time.Hour), 0, 0)
	require.NoError(t, err)
	result, err := commands.NewExpireStaleOrdersCommandHandler(f.factory, nil).Handle(t.Context(), cmd)

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 1, result.Expired)
}
