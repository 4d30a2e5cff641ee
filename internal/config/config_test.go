package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
	t.Setenv("MINIO_ENABLED", "false")
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresTokenSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresMinioCredentialsWhenEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("MINIO_ENABLED", "true")
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test,")
	t.Setenv("QUERY_TIMEOUT", "2s")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, DefaultAccessTokenExpiry, cfg.AccessTokenExpiry)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.False(t, cfg.IsProduction())
}

func TestDefaultPublicURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/media", defaultPublicURL("localhost:9000", "media", false))
	assert.Equal(t, "https://s3.test/bucket", defaultPublicURL("s3.test", "bucket", true))
}
