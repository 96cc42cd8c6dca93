package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "jwt", cfg.Auth.Mode)
	assert.Equal(t, "sha256", cfg.Storage.HashAlgorithm)
	assert.NotContains(t, cfg.CORS.AllowedOrigins, "*")
	assert.True(t, cfg.Review.AllowSkipStageReject)
	assert.False(t, cfg.Review.IgnoreUnknownSubmission)
	assert.NotEmpty(t, cfg.Server.InstanceID)
	require.Len(t, cfg.Catalog.Criteria, 5)
	assert.Equal(t, 1, cfg.Catalog.Criteria[0].ID)
	assert.Equal(t, 10, cfg.Catalog.Criteria[0].MaxScore)
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	content := `
storage:
  driver: memory
  blob: memory
auth:
  mode: jwt
  jwt_secret: s3cret
review:
  allow_skip_stage_reject: false
catalog:
  criteria:
    - id: 7
      title: Debate club
      max_score: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := LoadFrom(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Review.AllowSkipStageReject)
	require.Len(t, cfg.Catalog.Criteria, 1)
	assert.Equal(t, "Debate club", cfg.Catalog.Criteria[0].Title)
	assert.Equal(t, 3, cfg.Catalog.Criteria[0].MaxScore)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_MODE", "header")

	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "header", cfg.Auth.Mode)
}

func TestLoadFrom_RejectsJWTWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_MODE", "jwt")

	_, err := LoadFrom(viper.New(), t.TempDir())
	assert.Error(t, err)
}

func TestLoadFrom_RejectsWildcardOriginWithCredentials(t *testing.T) {
	dir := t.TempDir()
	content := `
auth:
  mode: header
cors:
  allowed_origins: ["*"]
  allow_credentials: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	_, err := LoadFrom(viper.New(), dir)
	assert.Error(t, err)
}

func TestLoadFrom_RejectsUnknownHashAlgorithm(t *testing.T) {
	t.Setenv("AUTH_MODE", "header")
	t.Setenv("STORAGE_HASH_ALGORITHM", "crc32")

	_, err := LoadFrom(viper.New(), t.TempDir())
	assert.Error(t, err)
}

func TestDatabaseConfig_URL(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", c.URL())
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())

	c.User = "app@corp"
	c.Password = "p@ss/w:rd?"
	parsed, err := url.Parse(c.URL())
	require.NoError(t, err)
	assert.Equal(t, "db:5432", parsed.Host)
	assert.Equal(t, "/n", parsed.Path)
	assert.Equal(t, "app@corp", parsed.User.Username())
	password, ok := parsed.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?", password)
}
