package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/co2ledger/internal/config"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "co2ledger.db", cfg.DB.Path)
	assert.Equal(t, "3200", cfg.Ledger.TankCapacityKg.String())
	assert.Equal(t, domain.PairingWarn, cfg.Ledger.PairingPolicy)
	assert.Equal(t, 90*24*time.Hour, cfg.Lookahead())
	assert.Equal(t, "text", cfg.Log.Format)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/co2ledger")
	t.Setenv("TANK_CAPACITY_KG", "1500.5")
	t.Setenv("MAINTENANCE_LOOKAHEAD_DAYS", "30")
	t.Setenv("PAIRING_POLICY", "reject")
	t.Setenv("TIMEZONE", "America/Lima")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "postgres://ledger@localhost/co2ledger", cfg.DB.URL)
	assert.Equal(t, "1500.5", cfg.Ledger.TankCapacityKg.String())
	assert.Equal(t, 30*24*time.Hour, cfg.Lookahead())
	assert.Equal(t, domain.PairingReject, cfg.Ledger.PairingPolicy)
	assert.Equal(t, "json", cfg.Log.Format)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Lima", loc.String())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_DRIVER=memory\nDATABASE_PATH=/tmp/ignored.db\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DATABASE_DRIVER")
		os.Unsetenv("DATABASE_PATH")
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.DB.Driver)
	assert.Equal(t, "/tmp/ignored.db", cfg.DB.Path)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_FORMAT=json\n"), 0o600))
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"DATABASE_DRIVER": "postgres"}},
		{"zero tank capacity", map[string]string{"TANK_CAPACITY_KG": "0"}},
		{"malformed tank capacity", map[string]string{"TANK_CAPACITY_KG": "lots"}},
		{"negative lookahead", map[string]string{"MAINTENANCE_LOOKAHEAD_DAYS": "-1"}},
		{"unknown pairing policy", map[string]string{"PAIRING_POLICY": "ignore"}},
		{"unknown timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"malformed port", map[string]string{"PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}
