package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Вспомогательные хелперы.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

// Полный корректный YAML с заданными значениями (не зависящими от дефолтов).
const sampleYAML = `
env: "prod"
http:
  host: "127.0.0.1"
  port: "9090"
auth:
  access_secret: "access-secret"
  refresh_secret: "refresh-secret"
  access_token_ttl: "10m"
  refresh_token_ttl: "240h"
  issuer: "issuerX"
  audience: ["asset-vault-api", "web"]
db:
  db_url: "mongodb://localhost:27017/assets"
redis:
  redis_url: "redis://localhost:6379/0"
  key_prefix: "rt:"
  op_timeout: "2s"
s3:
  endpoint: "http://localhost:9000"
  root_user: "minio"
  root_password: "minio123"
  bucket: "assets-test"
upload:
  max_size_bytes: 1048576
limits:
  login_per_window: 7
  refresh_per_window: 40
timeouts:
  service: "3s"
`

// Минимально валидный YAML (только обязательные поля).
const minimalYAML = `
auth:
  access_secret: "a-secret"
  refresh_secret: "r-secret"
db:
  db_url: "mongodb://localhost/min"
redis:
  redis_url: "redis://localhost:6379"
s3:
  endpoint: "http://localhost:9000"
  root_user: "minio"
  root_password: "minio123"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
auth:
  access_secret: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	require.Equal(t, "9090", cfg.HTTP.Port)
	require.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr())

	require.Equal(t, "access-secret", cfg.Auth.AccessSecret)
	require.Equal(t, "refresh-secret", cfg.Auth.RefreshSecret)
	require.Equal(t, 10*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 240*time.Hour, cfg.Auth.RefreshTokenTTL)
	require.Equal(t, "issuerX", cfg.Auth.Issuer)
	require.ElementsMatch(t, []string{"asset-vault-api", "web"}, cfg.Auth.Audience)

	require.Equal(t, "mongodb://localhost:27017/assets", cfg.DB.URL)
	require.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	require.Equal(t, "rt:", cfg.Redis.KeyPrefix)
	require.Equal(t, 2*time.Second, cfg.Redis.OpTimeout)

	require.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	require.Equal(t, "assets-test", cfg.S3.Bucket)
	require.Equal(t, int64(1048576), cfg.Upload.MaxSizeBytes)

	require.Equal(t, 7, cfg.Limits.LoginPerWindow)
	require.Equal(t, 40, cfg.Limits.RefreshPerWindow)
	require.Equal(t, 3*time.Second, cfg.Timeouts.Service)
}

func TestLoad_Minimal_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "8080", cfg.HTTP.Port)
	require.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 168*time.Hour, cfg.Auth.RefreshTokenTTL)
	require.Equal(t, "refresh_token:", cfg.Redis.KeyPrefix)
	require.Equal(t, 5*time.Second, cfg.Redis.OpTimeout)
	require.Equal(t, int64(52428800), cfg.Upload.MaxSizeBytes)
	require.Equal(t, 5, cfg.Limits.LoginPerWindow)
	require.Equal(t, 10*time.Minute, cfg.Limits.LoginWindow)
	require.Equal(t, 30, cfg.Limits.RefreshPerWindow)
	require.Equal(t, time.Hour, cfg.Limits.RefreshWindow)
	require.Equal(t, 100, cfg.Limits.APIPerWindow)
	require.Equal(t, 15*time.Minute, cfg.Limits.APIWindow)
}

func TestLoad_EnvOverlay_OverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", minimalYAML)

	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "env-access")
	t.Setenv("HTTP_PORT", "7070")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "env-access", cfg.Auth.AccessSecret)
	require.Equal(t, "7070", cfg.HTTP.Port)
}

func TestLoad_BrokenYAML_Error(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
}

func TestLoad_MissingExplicitPath_Error(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	require.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
