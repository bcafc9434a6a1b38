package myconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Parse()
		assert.NoError(t, err)
		assert.Equal(t, "dev", cfg.Environment)
		assert.Equal(t, "8080", cfg.Port)
		assert.True(t, cfg.KlarnaNativeEnabled)
		assert.True(t, cfg.IsDevelopment())
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("VIO_ENVIRONMENT", "prod")
		t.Setenv("VIO_PAYMENT_METHODS", "klarna,vipps")
		t.Setenv("VIO_VIPPS_POLL_INTERVAL", "5s")

		cfg, err := Parse()
		assert.NoError(t, err)
		assert.False(t, cfg.IsDevelopment())
		assert.Equal(t, []string{"klarna", "vipps"}, cfg.PaymentMethods)
		assert.Equal(t, "5s", cfg.VippsPollInterval.String())
	})
}
