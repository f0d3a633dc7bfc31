package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ENVIRONMENT",
		"PORT",
		"ALLOWED_ORIGINS",
		"JWT_SECRET",
		"DATABASE_URL",
		"SETTINGS_BROADCAST_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	req := require.New(t)
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	req.NoError(err)

	req.Equal("development", cfg.Environment)
	req.Equal(8080, cfg.Port)
	req.Empty(cfg.AllowedOrigins)
	req.NotEmpty(cfg.JWTSecret)
	req.NotEmpty(cfg.DatabaseDSN)
	req.Equal(60*time.Second, cfg.SettingsBroadcastInterval)
}

func TestLoadConfig_ParsesOrigins(t *testing.T) {
	req := require.New(t)
	clearConfigEnv(t)
	t.Setenv("ALLOWED_ORIGINS", " https://chat.campus.example , https://admin.campus.example ,")

	cfg, err := LoadConfig()
	req.NoError(err)
	req.Equal([]string{"https://chat.campus.example", "https://admin.campus.example"}, cfg.AllowedOrigins)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	req := require.New(t)
	clearConfigEnv(t)
	t.Setenv("PORT", "eighty")

	_, err := LoadConfig()
	req.Error(err)
}

func TestLoadConfig_PrivilegedPortRejected(t *testing.T) {
	req := require.New(t)
	clearConfigEnv(t)
	t.Setenv("PORT", "80")

	_, err := LoadConfig()
	req.Error(err)
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	req := require.New(t)
	clearConfigEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://app@db/campuschat")

	_, err := LoadConfig()
	req.Error(err)

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadConfig()
	req.Error(err)

	t.Setenv("DATABASE_URL", "postgres://app@db/campuschat")
	cfg, err := LoadConfig()
	req.NoError(err)
	req.Equal("prod-secret", cfg.JWTSecret)
}

func TestLoadConfig_BroadcastInterval(t *testing.T) {
	req := require.New(t)
	clearConfigEnv(t)

	t.Setenv("SETTINGS_BROADCAST_SECONDS", "5")
	cfg, err := LoadConfig()
	req.NoError(err)
	req.Equal(5*time.Second, cfg.SettingsBroadcastInterval)

	t.Setenv("SETTINGS_BROADCAST_SECONDS", "0")
	_, err = LoadConfig()
	req.Error(err)

	t.Setenv("SETTINGS_BROADCAST_SECONDS", "soon")
	_, err = LoadConfig()
	req.Error(err)
}
