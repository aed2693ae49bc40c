package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cms-server/internal/config"
	"cms-server/internal/repository/sqlite"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.App.Env = config.EnvDevelopment
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Database.Path = filepath.Join(t.TempDir(), "cms.db")
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLMinutes = 60
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRun_StartupFailureReturnsAfterCleanup(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.AdminEmail = "not-an-email"
	cfg.Auth.AdminPassword = "pw"

	assert.Equal(t, 1, run(context.Background(), cfg, quietLogger()))

	// migrations ran and the database was released
	db, err := sqlite.Open(cfg.Database.Path)
	require.NoError(t, err)
	defer db.Close()
	var users int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Zero(t, users)
}

func TestRun_ListenerFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Addr = "127.0.0.1:-1"

	assert.Equal(t, 1, run(context.Background(), cfg, quietLogger()))
}
