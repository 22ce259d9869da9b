package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, DBEnvLocal, cfg.Database.Env)
	require.Equal(t, 10*time.Second, cfg.Sweeper.Interval)
	require.Equal(t, 30*24*time.Hour, cfg.Notifications.Retention)
	require.Equal(t, 64, cfg.Realtime.SendBuffer)
	require.False(t, cfg.Workflow.RequireProof)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_ENV", "SUPABASE")
	t.Setenv("SUPABASE_DB_URL", "postgres://u:p@db.example:6543/postgres")
	t.Setenv("SWEEPER_INTERVAL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("PICKUP_WINDOW", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DBEnvSupabase, cfg.Database.Env)
	require.Equal(t, "postgres://u:p@db.example:6543/postgres", cfg.Database.URL)
	require.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, 72*time.Hour, cfg.Sweeper.PickupWindow)
}
