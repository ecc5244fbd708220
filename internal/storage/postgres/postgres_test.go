package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cardbattle/internal/config"
	"github.com/cory-johannsen/cardbattle/internal/storage/postgres"
	"github.com/cory-johannsen/cardbattle/internal/testutil"
)

func TestPoolConfig_TagsBattleConnections(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "cards",
		Password:        "secret",
		Name:            "cardbattle",
		SSLMode:         "disable",
		MaxConns:        8,
		MinConns:        2,
		MaxConnLifetime: 10 * time.Minute,
	}

	got, err := postgres.PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(8), got.MaxConns)
	assert.Equal(t, int32(2), got.MinConns)
	assert.Equal(t, 10*time.Minute, got.MaxConnLifetime)
	assert.Equal(t, "db.internal", got.ConnConfig.Host)
	assert.Equal(t, uint16(5433), got.ConnConfig.Port)
	assert.Equal(t, postgres.ApplicationName, got.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "5000", got.ConnConfig.RuntimeParams["statement_timeout"])
}

func TestPool_HealthAndUsage(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))
	require.NoError(t, pc.Pool.Exec(ctx, "SELECT 1"))
	assert.Error(t, pc.Pool.Exec(ctx, "SELECT * FROM no_such_table"))

	acquired, total := pc.Pool.InUse()
	assert.Zero(t, acquired)
	assert.GreaterOrEqual(t, total, int32(1))
	assert.NotNil(t, pc.Pool.Rosters())
	assert.NotNil(t, pc.Pool.Results())
}
