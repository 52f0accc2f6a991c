package orderrepo_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"marketplace/internal/adapters/out/postgres/orderrepo"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for
// OrderRepository using PostgreSQL containers. Raw-row assertions go through
// a plain database/sql connection so they cannot be masked by GORM mapping.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	sqlDB      *sql.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	sqlDB, err := sql.Open("postgres", connStr)
	suite.Require().NoError(err)
	suite.sqlDB = sqlDB

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.HistoryEntryDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_status_history").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.sqlDB != nil {
		suite.Require().NoError(suite.sqlDB.Close())
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()
	testOrder := suite.createPendingOrder()

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	suite.Equal(1, suite.countRows("orders"))
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_ExistingOrder_RoundTrip() {
	ctx := context.Background()
	testOrder := suite.createPendingOrder()
	suite.addOrder(testOrder)

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(testOrder.ID().IsEqual(loaded.ID()))
	suite.True(testOrder.BuyerID().IsEqual(loaded.BuyerID()))
	suite.True(testOrder.SellerID().IsEqual(loaded.SellerID()))
	suite.Equal(order.Pending, loaded.Status())
	suite.Equal(0, loaded.Version())
	suite.Empty(loaded.History())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFound() {
	ctx := context.Background()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())
	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateWithVersion_MatchingVersion_Persists() {
	ctx := context.Background()
	testOrder := suite.createPendingOrder()
	suite.addOrder(testOrder)

	expectedVersion := testOrder.Version()
	suite.applyTransition(testOrder, order.Confirmed, "")

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	err := suite.repository.UpdateWithVersion(ctx, testOrder, expectedVersion)
	suite.Require().NoError(err)

	var status, version int
	row := suite.sqlDB.QueryRow(
		`SELECT status, version FROM orders WHERE id = $1`, testOrder.ID().String())
	suite.Require().NoError(row.Scan(&status, &version))
	suite.Equal(int(order.Confirmed), status)
	suite.Equal(1, version)

	var historyCount int
	row = suite.sqlDB.QueryRow(
		`SELECT COUNT(1) FROM order_status_history WHERE order_id = $1`, testOrder.ID().String())
	suite.Require().NoError(row.Scan(&historyCount))
	suite.Equal(1, historyCount)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateWithVersion_StaleVersion_Conflict() {
	ctx := context.Background()
	testOrder := suite.createPendingOrder()
	suite.addOrder(testOrder)

	// First writer wins.
	winner, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.applyTransition(winner, order.Confirmed, "")
	suite.tracker.On("TrackAggregate", winner.ID(), winner).Once()
	suite.Require().NoError(suite.repository.UpdateWithVersion(ctx, winner, 0))

	// Second writer read the same version and must lose.
	loser, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.applyTransition(loser, order.Processing, "")
	err = suite.repository.UpdateWithVersion(ctx, loser, 0)
	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrVersionConflict)

	// The row reflects exactly one applied transition: version 1, not 2.
	var status, version int
	row := suite.sqlDB.QueryRow(
		`SELECT status, version FROM orders WHERE id = $1`, testOrder.ID().String())
	suite.Require().NoError(row.Scan(&status, &version))
	suite.Equal(int(order.Confirmed), status)
	suite.Equal(1, version)

	var historyCount int
	row = suite.sqlDB.QueryRow(
		`SELECT COUNT(1) FROM order_status_history WHERE order_id = $1`, testOrder.ID().String())
	suite.Require().NoError(row.Scan(&historyCount))
	suite.Equal(1, historyCount)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateWithVersion_CancellationColumns() {
	ctx := context.Background()
	testOrder := suite.createPendingOrder()
	suite.addOrder(testOrder)

	suite.applyTransition(testOrder, order.Cancelled, "out of stock")
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.UpdateWithVersion(ctx, testOrder, 0))

	var reason string
	row := suite.sqlDB.QueryRow(
		`SELECT cancellation_reason FROM orders WHERE id = $1`, testOrder.ID().String())
	suite.Require().NoError(row.Scan(&reason))
	suite.Equal("out of stock", reason)

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(loaded.CancellationInfo())
	suite.Equal("out of stock", loaded.CancellationInfo().Reason)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_LoadsAtMostFiveHistoryEntries() {
	ctx := context.Background()
	testOrder := suite.createPendingOrder()
	suite.addOrder(testOrder)

	// Walk the order through seven transitions.
	path := []order.Status{
		order.Confirmed, order.Processing, order.Manufacturing,
		order.ReadyToShip, order.Shipped, order.Delivered, order.Completed,
	}
	for _, next := range path {
		current, err := suite.repository.Get(ctx, testOrder.ID())
		suite.Require().NoError(err)
		expectedVersion := current.Version()
		suite.applyTransition(current, next, "")
		suite.tracker.On("TrackAggregate", current.ID(), current).Once()
		suite.Require().NoError(suite.repository.UpdateWithVersion(ctx, current, expectedVersion))
	}

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Completed, loaded.Status())
	suite.Equal(len(path), loaded.Version())

	history := loaded.History()
	suite.Require().Len(history, 5)
	suite.Equal(order.Completed, history[4].Status)
	suite.Equal(order.Delivered, history[3].Status)

	suite.Equal(len(path), suite.countRows("order_status_history"))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllDeliveredBefore_FiltersByCutoff() {
	ctx := context.Background()

	stale := suite.deliverOrder(ctx)
	fresh := suite.deliverOrder(ctx)

	// Age the stale order's delivery timestamp past the cutoff.
	agedDelivery := time.Now().Add(-100 * time.Hour)
	suite.Require().NoError(suite.db.Exec(
		`UPDATE orders SET shipping_delivered_at = ? WHERE id = ?`,
		agedDelivery, stale.ID().Bytes()).Error)

	cutoff := time.Now().Add(-72 * time.Hour)
	overdue, err := suite.repository.GetAllDeliveredBefore(ctx, cutoff)
	suite.Require().NoError(err)
	suite.Require().Len(overdue, 1)
	suite.True(stale.ID().IsEqual(overdue[0].ID()))
	suite.Equal(order.Delivered, overdue[0].Status())

	_ = fresh
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllDeliveredBefore_IgnoresOtherStatuses() {
	ctx := context.Background()

	pending := suite.createPendingOrder()
	suite.addOrder(pending)

	cutoff := time.Now().Add(time.Hour)
	overdue, err := suite.repository.GetAllDeliveredBefore(ctx, cutoff)
	suite.Require().NoError(err)
	suite.Empty(overdue)
}

func (suite *OrderRepositoryIntegrationTestSuite) createPendingOrder() *order.Order {
	testOrder, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), order.Pending, time.Now())
	suite.Require().NoError(err)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) addOrder(testOrder *order.Order) {
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.Add(context.Background(), testOrder))
}

func (suite *OrderRepositoryIntegrationTestSuite) applyTransition(
	testOrder *order.Order, next order.Status, reason string,
) {
	suite.Require().NoError(testOrder.ApplyTransition(order.TransitionRequest{
		Requested: next,
		Actor:     testOrder.SellerID().String(),
		Reason:    reason,
	}, time.Now()))
}

// deliverOrder persists an order and walks it to delivered status.
func (suite *OrderRepositoryIntegrationTestSuite) deliverOrder(ctx context.Context) *order.Order {
	testOrder := suite.createPendingOrder()
	suite.addOrder(testOrder)

	path := []order.Status{
		order.Confirmed, order.Processing, order.Manufacturing,
		order.ReadyToShip, order.Shipped, order.Delivered,
	}
	for _, next := range path {
		expectedVersion := testOrder.Version()
		suite.applyTransition(testOrder, next, "")
		suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
		suite.Require().NoError(suite.repository.UpdateWithVersion(ctx, testOrder, expectedVersion))
	}

	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) countRows(table string) int {
	var count int
	row := suite.sqlDB.QueryRow(`SELECT COUNT(1) FROM ` + table)
	suite.Require().NoError(row.Scan(&count))
	return count
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
