package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, BackendDynamo, cfg.StoreBackend)
	assert.Equal(t, 6, cfg.OTPDigits)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.SMSEnabled)
	assert.Zero(t, cfg.TrustedProxyHops)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OTP_TTL_MINUTES", "10")
	t.Setenv("OTP_DIGITS", "4")
	t.Setenv("SMS_ENABLED", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TRUSTED_PROXY_HOPS", "1")

	cfg := Load()
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 4, cfg.OTPDigits)
	assert.True(t, cfg.SMSEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 1, cfg.TrustedProxyHops)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "soon")
	assert.Equal(t, 168*time.Hour, Load().JWTExpiry)
}
