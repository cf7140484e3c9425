package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_DATABASE", "gigcrew")
	t.Setenv("DB_APP_USER", "gigcrew")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 5, cfg.DBAppConnectionLimit)
	assert.Equal(t, AuthModeHMAC, cfg.AuthMode)
	assert.Equal(t, "test-secret", cfg.SigningSecret)
	assert.Equal(t, 15*time.Minute, cfg.SignedURLTTL)
	assert.Equal(t, 10, cfg.ExportRateLimit)
	assert.Empty(t, cfg.IdentityURL())
}

func TestLoadRequiresDatabase(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DATABASE", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDBType(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_TYPE", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadSQLiteNeedsNoUser(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_APP_USER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsSQLite())
}

func TestLoadInfersJWKS(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_JWKS_URL", "https://id.example.com/.well-known/jwks.json")
	t.Setenv("JWT_ISSUER", "https://id.example.com/")
	t.Setenv("JWT_AUDIENCE", "gigcrew")
	t.Setenv("SIGNING_SECRET", "files")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AuthModeJWKS, cfg.AuthMode)
	assert.Equal(t, "https://id.example.com/.well-known/jwks.json", cfg.IdentityURL())
}

func TestLoadAuthorizerNeedsClientID(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AUTH_MODE", "authorizer")
	t.Setenv("AUTHZ_URL", "http://authorizer:8080")

	_, err := Load()
	assert.ErrorContains(t, err, "AUTHZ_CLIENT_ID")
}

func TestLoadRequiresIdentity(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
