package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("yaml with env override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yml := `
server:
  port: 9090
  host: 127.0.0.1
database:
  host: db
  port: 5432
  user: relief
  password: secret
  dbname: relief
  sslmode: disable
aws:
  s3_bucket: from-yaml
jwt:
  secret: yaml-secret
  access_ttl: 1h
`
		require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
		t.Setenv("AWS_BUCKET", "from-env")
		t.Setenv("SECRET_KEY", "")
		t.Setenv("APP_PORT", "")
		t.Setenv("DATABASE_URL", "")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "from-env", cfg.AWS.S3Bucket)
		assert.Equal(t, "yaml-secret", cfg.JWT.Secret)
		assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
		assert.Equal(t, "host=db port=5432 user=relief password=secret dbname=relief sslmode=disable", cfg.Database.DSN())
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		for _, key := range []string{"SECRET_KEY", "APP_PORT", "ALLOWED_ORIGINS"} {
			t.Setenv(key, "")
		}
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)

		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, "Alert", cfg.JWT.Secret)
		assert.Equal(t, "10-M", cfg.RateLimit.SOSRate)
		assert.Equal(t, "images", cfg.Images.Dir)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("database url wins", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/relief")
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@localhost:5432/relief", cfg.Database.DSN())
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
