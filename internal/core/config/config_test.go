package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FileAndDefaults(t *testing.T) {
	p := writeConfig(t, `
jwt:
  refreshSecret: s3cret
  privateKeyPath: /etc/auth/private.pem
db:
  driver: sqlite
  dsn: ":memory:"
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", c.JWT.RefreshSecret)
	assert.Equal(t, "/etc/auth/private.pem", c.JWT.PrivateKeyPath)
	assert.Equal(t, "auth-service", c.JWT.Issuer)
	assert.Equal(t, time.Hour, c.JWT.AccessTTL())
	assert.Equal(t, 365*24*time.Hour, c.JWT.RefreshTTL())
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, 5501, c.App.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORS.AllowOrigins)
	assert.Equal(t, "localhost", c.Cookie.Domain)
	assert.False(t, c.Redis.Enabled)
	assert.Equal(t, "auth:", c.Redis.Prefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "jwt:\n  refreshSecret: from-file\n")
	t.Setenv("APP_JWT_REFRESHSECRET", "from-env")
	t.Setenv("APP_APP_HTTP_PORT", "8080")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.RefreshSecret)
	assert.Equal(t, 8080, c.App.HTTP.Port)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "app:\n  name: x\n"))
	assert.ErrorContains(t, err, "refreshSecret")

	_, err = Load(writeConfig(t, "jwt:\n  refreshSecret: s\n  accessTokenTTLMin: 0\n"))
	assert.ErrorContains(t, err, "ttl")
}

func TestLoad_LocalConfigParses(t *testing.T) {
	c, err := Load("../../../configs/config.local.yaml")
	require.NoError(t, err)
	assert.Equal(t, "certs/private.pem", c.JWT.PrivateKeyPath)
	assert.Equal(t, 8760, c.JWT.RefreshTokenTTLHours)
}
