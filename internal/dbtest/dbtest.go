// Package dbtest provides a postgres-backed GORM handle for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/hostpool/sls/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDB starts a throwaway postgres container, migrates the SLS schema
// into it, and returns a GORM handle. The container is terminated when the
// test finishes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test sslmode=disable", host, port.Port())
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(&model.Slot{}, &model.UsageLog{}, &model.Settings{}))

	return db
}

// ProvisionPool creates an available slot pool of the given size and
// returns the slot ids in creation order.
func ProvisionPool(t *testing.T, db *gorm.DB, size int) []int64 {
	t.Helper()

	ids := make([]int64, 0, size)
	for i := 0; i < size; i++ {
		slot := model.Slot{Status: model.SlotAvailable, Owner: "platform"}
		require.NoError(t, db.Create(&slot).Error)
		ids = append(ids, slot.ID)
	}
	return ids
}
