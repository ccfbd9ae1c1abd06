package commands_test

import (
	"context"
	"testing"

	"courierhub/internal/core/application/usecases/commands"
	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/model/zone"
	"courierhub/internal/core/domain/services"
	"courierhub/internal/core/ports"
	"courierhub/internal/core/ports/portstest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *portstest.Store
	factory ports.UnitOfWorkFactory
	zoneID  kernel.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := portstest.NewStore()
	f := &fixture{store: store, factory: store.Factory(), zoneID: kernel.NewUUID()}

	z, err := zone.NewZone(f.zoneID, "Downtown", true, zone.Tariff{
		BasePrice:        500,
		PricePerKm:       200,
		SurgeMultiplier:  decimal.NewFromInt(1),
		MediumSupplement: 150,
		LargeSupplement:  300,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.Create().ZoneRepository().Save(t.Context(), z))
	return f
}

func (f *fixture) pricing(t *testing.T) services.PricingCalculator {
	t.Helper()
	p, err := services.NewPricingCalculator(decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	return p
}

func (f *fixture) courier(t *testing.T, available bool) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	loc, err := kernel.NewLocation(0.001, 0.001)
	require.NoError(t, err)

	cmd, err := commands.NewUpdateCourierLocationCommand(id, loc, available, "Rider", courier.Bicycle)
	require.NoError(t, err)
	_, err = commands.NewUpdateCourierLocationCommandHandler(f.factory).Handle(t.Context(), cmd)
	require.NoError(t, err)
	return id
}

// createOrder places a small-package order whose pickup and dropoff are 5.5 km apart.
func (f *fixture) createOrder(t *testing.T, clientID kernel.UUID) *order.Order {
	t.Helper()
	return f.createOrderIn(t, clientID, nil)
}

// createOrderIn prices the order with the tariff of zoneID, or the default zone when nil.
func (f *fixture) createOrderIn(t *testing.T, clientID kernel.UUID, zoneID *kernel.UUID) *order.Order {
	t.Helper()

	pickupLoc, err := kernel.NewLocation(0, 0)
	require.NoError(t, err)
	dropoffLoc, err := kernel.NewLocation(0.049462, 0)
	require.NoError(t, err)

	pickup, err := order.NewStop(pickupLoc, "1 Market St", "Ann", "+100")
	require.NoError(t, err)
	dropoff, err := order.NewStop(dropoffLoc, "9 Harbor Rd", "Bob", "+200")
	require.NoError(t, err)
	pkg, err := order.NewPackage("documents", order.SizeSmall, 0.5)
	require.NoError(t, err)

	cmd, err := commands.NewCreateOrderCommand(clientID, pickup, dropoff, pkg, zoneID)
	require.NoError(t, err)
	o, err := commands.NewCreateOrderCommandHandler(f.factory, f.pricing(t), f.zoneID).Handle(t.Context(), cmd)
	require.NoError(t, err)
	return o
}

func (f *fixture) accept(t *testing.T, courierID, orderID kernel.UUID) *order.Order {
	t.Helper()
	cmd, err := commands.NewAcceptOrderCommand(courierID, orderID)
	require.NoError(t, err)
	o, err := commands.NewAcceptOrderCommandHandler(f.factory).Handle(t.Context(), cmd)
	require.NoError(t, err)
	return o
}

func (f *fixture) changeStatus(actor kernel.Actor, orderID kernel.UUID, to order.Status) (*order.Order, error) {
	cmd, err := commands.NewChangeOrderStatusCommand(actor, orderID, to, nil)
	if err != nil {
		return nil, err
	}
	return commands.NewChangeOrderStatusCommandHandler(f.factory).Handle(context.Background(), cmd)
}

// deliveredOrder runs an order through the whole lifecycle and returns it with its courier.
func (f *fixture) deliveredOrder(t *testing.T) (*order.Order, kernel.UUID) {
	t.Helper()
	return f.deliver(t, f.createOrder(t, kernel.NewUUID()))
}

// freeZone stores a zone whose tariff prices every order at zero.
func (f *fixture) freeZone(t *testing.T) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	z, err := zone.NewZone(id, "Promo", true, zone.Tariff{SurgeMultiplier: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.NoError(t, f.factory.Create().ZoneRepository().Save(t.Context(), z))
	return id
}

func (f *fixture) deliver(t *testing.T, o *order.Order) (*order.Order, kernel.UUID) {
	t.Helper()
	courierID := f.courier(t, true)
	f.accept(t, courierID, o.ID())

	actor := kernel.Actor{ID: courierID, Role: kernel.RoleCourier}
	_, err := f.changeStatus(actor, o.ID(), order.PickedUp)
	require.NoError(t, err)
	delivered, err := f.changeStatus(actor, o.ID(), order.Delivered)
	require.NoError(t, err)
	return delivered, courierID
}
