package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")

	t.Setenv("DB_DSN", "postgres://localhost/booking")
	t.Setenv("JWT_SECRET", "")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/booking")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PENDING_PAYMENT_TTL", "")
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("BCRYPT_COST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 30*time.Minute, cfg.PendingPaymentTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/booking")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PENDING_PAYMENT_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PENDING_PAYMENT_TTL")
}
