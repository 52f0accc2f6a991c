package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/pkg/errs"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormUnitOfWork_StoreOutage(t *testing.T) {
	sqlDB, err := sql.Open("postgres",
		"host=127.0.0.1 port=1 user=testuser dbname=testdb sslmode=disable connect_timeout=1")
	require.NoError(t, err)

	db, err := gorm.Open(postgresdriver.New(postgresdriver.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	t.Run("should classify failed begin as store unavailable", func(t *testing.T) {
		uow := postgres.NewGormUnitOfWorkFactory(db).Create()

		err := uow.Begin(context.Background())

		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
	})
}
