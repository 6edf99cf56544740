package service

import (
	"context"
	"storefront/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)
	cfg := &config.Config{
		Environment: config.Environment{Name: "test"},
		DatabaseURL: "sqlite://file::memory:",
		AppVersion:  "1.2.3",
		Stripe:      config.Stripe{SecretKey: "sk", PublishableKey: "pk"},
		Auth:        config.Auth{JWTSecret: "secret"},
	}

	res := NewHealthService(db, cfg).Check(context.Background())
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, "1.2.3", res.Version)
	assert.Equal(t, "test", res.Environment)
	require.Contains(t, res.Checks, "database")
	assert.Equal(t, "up", res.Checks["database"].Status)
	assert.NotNil(t, res.Checks["database"].Latency)
	assert.Equal(t, "up", res.Checks["environment"].Status)
}

func TestHealthCheckDegraded(t *testing.T) {
	db := newTestDB(t)
	svc := NewHealthService(db, &config.Config{DatabaseURL: "sqlite://file::memory:"})

	res := svc.Check(context.Background())
	assert.Equal(t, "degraded", res.Status)
	assert.Equal(t, "down", res.Checks["environment"].Status)
	assert.Contains(t, res.Checks["environment"].Error, "STRIPE_SECRET_KEY")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Error(t, svc.Ping(context.Background()))
	res = svc.Check(context.Background())
	assert.Equal(t, "down", res.Checks["database"].Status)
}
