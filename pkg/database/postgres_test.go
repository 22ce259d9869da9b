package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/pkg/config"
)

func TestDSNLocal(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Env:      config.DBEnvLocal,
		Host:     "db",
		Port:     5432,
		User:     "civic",
		Password: "secret",
		Name:     "reports",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	require.Equal(t, "host=db port=5432 user=civic password=secret dbname=reports sslmode=disable", dsn)
}

func TestDSNSupabase(t *testing.T) {
	_, err := DSN(config.DatabaseConfig{Env: config.DBEnvSupabase})
	require.Error(t, err)

	dsn, err := DSN(config.DatabaseConfig{Env: config.DBEnvSupabase, URL: "postgres://x"})
	require.NoError(t, err)
	require.Equal(t, "postgres://x", dsn)
}
