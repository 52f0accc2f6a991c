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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// unreachableGormDB returns a GORM handle whose connections always fail to
// dial, standing in for a store outage.
func unreachableGormDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("postgres",
		"host=127.0.0.1 port=1 user=testuser dbname=testdb sslmode=disable connect_timeout=1")
	require.NoError(t, err)

	db, err := gorm.Open(postgresdriver.New(postgresdriver.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	return db
}

func TestGormOrderRepository_StoreOutage(t *testing.T) {
	tracker := new(MockAggregateTracker)
	repository := orderrepo.NewGormOrderRepository(unreachableGormDB(t), tracker)
	ctx := context.Background()

	pending, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), order.Pending, time.Now())
	require.NoError(t, err)

	t.Run("should classify failed read as store unavailable", func(t *testing.T) {
		_, err := repository.Get(ctx, kernel.NewUUID())

		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should classify failed add as store unavailable", func(t *testing.T) {
		err := repository.Add(ctx, pending)

		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
	})

	t.Run("should classify failed conditional write as store unavailable", func(t *testing.T) {
		err := repository.UpdateWithVersion(ctx, pending, 0)

		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, errs.ErrVersionConflict)
	})

	t.Run("should classify failed delivered scan as store unavailable", func(t *testing.T) {
		_, err := repository.GetAllDeliveredBefore(ctx, time.Now())

		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
	})
}
