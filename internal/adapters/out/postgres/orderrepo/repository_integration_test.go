package orderrepo_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "courierhub/internal/adapters/out/postgres"
	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/adapters/out/postgres/orderrepo"
	"courierhub/internal/adapters/out/postgres/postgrestest"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockTracker is a mock implementation of dbutil.Tracker.
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(aggregate dbutil.EventSource) {
	m.Called(aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *postgrestest.Database
	repository *orderrepo.GormOrderRepository
	tracker    *MockTracker
	zoneID     kernel.UUID
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := postgrestest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database

	suite.zoneID, err = kernel.ParseUUID(postgres_adapter.DefaultZoneID)
	suite.Require().NoError(err)
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Reset())

	suite.tracker = new(MockTracker)
	suite.tracker.On("Track", mock.Anything)
	suite.repository = orderrepo.NewGormOrderRepository(suite.database.DB, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.database != nil {
		suite.Require().NoError(suite.database.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_RoundTrips() {
	ctx := context.Background()
	o := suite.createTestOrder(0, 0, time.Now())

	suite.Require().NoError(suite.repository.Add(ctx, o))
	suite.tracker.AssertCalled(suite.T(), "Track", o)

	loaded, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(o.ClientID(), loaded.ClientID())
	suite.Equal(o.Pickup().Address, loaded.Pickup().Address)
	suite.Equal(o.Dropoff().ContactPhone, loaded.Dropoff().ContactPhone)
	suite.Equal(o.Package(), loaded.Package())
	suite.Equal(o.Price(), loaded.Price())
	suite.Nil(loaded.CourierID())
	suite.WithinDuration(o.CreatedAt(), loaded.CreatedAt(), time.Millisecond)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StatusTransitionsPersist() {
	ctx := context.Background()
	o := suite.createTestOrder(0, 0, time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	courierID := kernel.NewUUID()
	_, err := o.Accept(courierID, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, o))

	loaded, err := suite.repository.GetForUpdate(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Assigned, loaded.Status())
	suite.Require().NotNil(loaded.CourierID())
	suite.Equal(courierID, *loaded.CourierID())
	suite.NotNil(loaded.AssignedAt())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFoundError() {
	o := suite.createTestOrder(0, 0, time.Now())
	err := suite.repository.Update(context.Background(), o)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestHistory_ReturnsEntriesInOrder() {
	ctx := context.Background()
	o := suite.createTestOrder(0, 0, time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	client := kernel.Actor{ID: o.ClientID(), Role: kernel.RoleClient}
	created, err := order.NewHistoryEntry(o.ID(), order.StatusChange{To: order.Pending, At: o.CreatedAt()}, client, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.AddHistory(ctx, created))

	change, err := o.Cancel(client, "changed my mind", o.CreatedAt())
	suite.Require().NoError(err)
	geo, err := kernel.NewLocation(1.5, 2.5)
	suite.Require().NoError(err)
	cancelled, err := order.NewHistoryEntry(o.ID(), change, client, &geo)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.AddHistory(ctx, cancelled))

	history, err := suite.repository.History(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
	suite.Equal(order.Pending, history[0].To)
	suite.Nil(history[0].GeoStamp)
	suite.Equal(order.Pending, history[1].From)
	suite.Equal(order.Cancelled, history[1].To)
	suite.Equal(client, history[1].Actor)
	suite.Require().NotNil(history[1].GeoStamp)
	suite.InDelta(2.5, history[1].GeoStamp.Lon(), 1e-9)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestStalePendingIDs_ReturnsOldestPendingFirst() {
	ctx := context.Background()
	now := time.Now().UTC()

	oldest := suite.createTestOrder(0, 0, now.Add(-30*time.Hour))
	older := suite.createTestOrder(0, 0, now.Add(-25*time.Hour))
	fresh := suite.createTestOrder(0, 0, now.Add(-time.Hour))
	for _, o := range []*order.Order{older, fresh, oldest} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	ids, err := suite.repository.StalePendingIDs(ctx, now.Add(-24*time.Hour), 10)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{oldest.ID(), older.ID()}, ids)

	ids, err = suite.repository.StalePendingIDs(ctx, now.Add(-24*time.Hour), 1)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{oldest.ID()}, ids)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestPendingInBox_FiltersByPickupAndStatus() {
	ctx := context.Background()

	inside := suite.createTestOrder(0.01, 0.01, time.Now())
	outside := suite.createTestOrder(1, 1, time.Now())
	taken := suite.createTestOrder(0.02, 0.02, time.Now())
	for _, o := range []*order.Order{inside, outside, taken} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}
	_, err := taken.Accept(kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, taken))

	origin, err := kernel.NewLocation(0, 0)
	suite.Require().NoError(err)
	box, err := origin.BoundingBox(5)
	suite.Require().NoError(err)

	orders, err := suite.repository.PendingInBox(ctx, box)
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)
	suite.Equal(inside.ID(), orders[0].ID())
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(lat, lon float64, createdAt time.Time) *order.Order {
	pickupLoc, err := kernel.NewLocation(lat, lon)
	suite.Require().NoError(err)
	dropoffLoc, err := kernel.NewLocation(lat+0.01, lon)
	suite.Require().NoError(err)
	pickup, err := order.NewStop(pickupLoc, "1 Market St", "Ann", "+100")
	suite.Require().NoError(err)
	dropoff, err := order.NewStop(dropoffLoc, "9 Harbor Rd", "Bob", "+200")
	suite.Require().NoError(err)
	pkg, err := order.NewPackage("flowers", order.SizeMedium, 2)
	suite.Require().NoError(err)

	o, _, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), suite.zoneID, pickup, dropoff, pkg, order.Price{
		DistanceKm:      1.11,
		SurgeMultiplier: 1,
		BasePrice:       500,
		DistancePrice:   222,
		SizeSupplement:  200,
		TotalPrice:      922,
		PlatformFee:     138,
		CourierEarnings: 784,
	}, createdAt)
	suite.Require().NoError(err)
	return o
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
