package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(write(t, `
[server]
http_port = 9090

[booking]
payment_grace_minutes = 20
timezone = "America/Sao_Paulo"
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 30, cfg.Booking.SlotGranularityMinutes)
	assert.Equal(t, DriverMemory, cfg.Locker.Driver)

	policy, err := cfg.Booking.Policy()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, policy.PaymentGracePeriod)
	assert.Equal(t, "America/Sao_Paulo", policy.Location.String())
	assert.True(t, policy.IsDeferred(domain.PaymentPix))
	assert.False(t, policy.IsDeferred(domain.PaymentCash))
}

func TestLoad_RateLimitProxyTrust(t *testing.T) {
	cfg, err := Load(write(t, ""))
	require.NoError(t, err)
	assert.False(t, cfg.RateLimit.TrustProxy)

	cfg, err = Load(write(t, "[ratelimit]\ntrust_proxy = true"))
	require.NoError(t, err)
	assert.True(t, cfg.RateLimit.TrustProxy)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoad_PasswordFromEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := Load(write(t, `
[database]
password = "from-file"
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"granularity":    "[booking]\nslot_granularity_minutes = 0",
		"grace":          "[booking]\npayment_grace_minutes = -1",
		"payment method": "[booking]\ndeferred_payment_methods = [\"cheque\"]",
		"timezone":       "[booking]\ntimezone = \"Mars/Olympus\"",
		"db driver":      "[database]\ndriver = \"sqlite\"",
		"kafka":          "[events]\ndriver = \"kafka\"",
		"locker":         "[locker]\ndriver = \"zookeeper\"",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(write(t, "not = [valid"))
	assert.Error(t, err)
}
