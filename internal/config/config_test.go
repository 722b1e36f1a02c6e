package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("DB_URL", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "sketchbook_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("PORT", "4100")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "sketchbook_test", cfg.MongoDB.Database)
	require.Equal(t, "4100", cfg.Server.Port)
	require.Equal(t, 5*time.Minute, cfg.Storage.SignedURLTTL)
	require.Equal(t, "http://localhost:4100/blobs", cfg.Storage.PublicURL)
	require.False(t, cfg.Server.Production())
	require.Empty(t, cfg.Seed.Username)
}

func TestLoadConfig_SeedUser(t *testing.T) {
	t.Setenv("SEED_USERNAME", "ada")
	t.Setenv("SEED_EMAIL", "ada@example.com")
	t.Setenv("SEED_PASSWORD", "pw-ada")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, SeedConfig{Username: "ada", Email: "ada@example.com", Password: "pw-ada"}, cfg.Seed)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("NODE_ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_DevelopmentSecretFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("SERVER_ENVIRONMENT", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.JWT.Secret)
}
