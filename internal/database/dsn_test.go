package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "tripdesk", Name: "tripdesk"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")
	require.Contains(t, dsn, "application_name=tripdesk")

	_, err = buildPostgresDSN(Config{Host: "db.internal"})
	require.Error(t, err)
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "tripdesk", Password: "secret", Name: "tripdesk"})
	require.NoError(t, err)
	require.Contains(t, dsn, "tripdesk:secret@tcp(127.0.0.1:3306)/tripdesk?")
	require.Contains(t, dsn, "parseTime=True")
	require.Contains(t, dsn, "charset=utf8mb4")
}
