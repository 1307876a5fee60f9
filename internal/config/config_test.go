package config_test

import (
	"testing"
	"time"

	"printshop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("AWS_S3_BUCKET", "prints")

	//外の環境変数に引きずられないように
	for _, k := range []string{"PORT", "GO_ENV", "POSTGRES_PORT", "REDIS_DB", "SIGNED_URL_TTL", "JWT_EXPIRES_IN", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", ":9000")
	t.Setenv("GO_ENV", "prod")
	t.Setenv("SIGNED_URL_TTL", "120")
	t.Setenv("JWT_EXPIRES_IN", "24h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Minute, cfg.SignedURLTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAZORPAY_WEBHOOK_SECRET is required")
}

func TestLoad_InvalidNumber(t *testing.T) {
	setRequired(t)
	t.Setenv("POSTGRES_PORT", "abc")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PORT must be number")
}
