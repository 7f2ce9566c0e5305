package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NitishSati26/travel-story/internal/config"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "supersecret")
	t.Setenv("ACCESS_TOKEN_TTL", "24h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("HTTP_LISTEN_ADDR", ":9090")
	t.Setenv("HTTP_IDLE_TIMEOUT", "70s")
	t.Setenv("HTTP_READ_TIMEOUT", "40s")
	t.Setenv("HTTP_WRITE_TIMEOUT", "50s")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "15s")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "traveler")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("DB_NAME", "journal")
	t.Setenv("UPLOADS_ROOT", "./my_uploads")
	t.Setenv("UPLOADS_SERVE_ROOT", "http://cdn.example.com/uploads/")
	t.Setenv("PLACEHOLDER_URL", "http://cdn.example.com/assets/blank.png")
	t.Setenv("UPLOADS_MAX_SIZE", "12345")
	t.Setenv("UPLOADS_MAX_WIDTH", "2560")
	t.Setenv("UPLOADS_MAX_HEIGHT", "1440")

	cfg := config.FromEnv()

	assert.Equal(t, "supersecret", cfg.AuthSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, ":9090", cfg.HTTP.ListenAddr)
	assert.Equal(t, 70*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, 40*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 50*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, "traveler", cfg.DB.User)
	assert.Equal(t, "hunter2", cfg.DB.Password)
	assert.Equal(t, "journal", cfg.DB.Name)
	assert.Equal(t, "./my_uploads", cfg.Blob.Root)
	assert.Equal(t, "http://cdn.example.com/uploads/", cfg.Blob.ServeRoot.String())
	assert.Equal(t, "http://cdn.example.com/assets/blank.png", cfg.Blob.Placeholder.String())
	assert.Equal(t, int64(12345), cfg.Blob.MaxSize)
	assert.Equal(t, 2560, cfg.Blob.MaxWidth)
	assert.Equal(t, 1440, cfg.Blob.MaxHeight)
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test")

	cfg := config.FromEnv()

	assert.Equal(t, "test", cfg.AuthSecret)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, ":8000", cfg.HTTP.ListenAddr)
	assert.Equal(t, 60*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "travel_story", cfg.DB.Name)
	assert.Equal(t, "./uploads", cfg.Blob.Root)
	assert.Equal(t, "./assets", cfg.Blob.AssetsRoot)
	assert.Equal(t, "http://localhost:8000/uploads/", cfg.Blob.ServeRoot.String())
	assert.Equal(t, "http://localhost:8000/assets/placeholder.png", cfg.Blob.Placeholder.String())
	assert.Equal(t, int64(5*1024*1024), cfg.Blob.MaxSize)
}

func TestFromFile(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "from-env")
	t.Setenv("DB_HOST", "env-host")

	path := filepath.Join(t.TempDir(), "app.properties")
	content := `
auth.secret = from-file
auth.token_ttl = 48h
http.listen_addr = :9000
db.name = journal
blob.serve_root = http://cdn.example.com/uploads/
blob.max_size = 1024
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.AuthSecret)
	assert.Equal(t, 48*time.Hour, cfg.TokenTTL)
	assert.Equal(t, ":9000", cfg.HTTP.ListenAddr)
	assert.Equal(t, "journal", cfg.DB.Name)
	assert.Equal(t, "http://cdn.example.com/uploads/", cfg.Blob.ServeRoot.String())
	assert.Equal(t, int64(1024), cfg.Blob.MaxSize)

	// Keys absent from the file keep their environment value.
	assert.Equal(t, "env-host", cfg.DB.Host)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestFromFile_MissingSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	path := filepath.Join(t.TempDir(), "app.properties")
	require.NoError(t, os.WriteFile(path, []byte("db.name = journal\n"), 0o644))

	_, err := config.FromFile(path)
	assert.Error(t, err)
}

func TestFromFile_MissingFile(t *testing.T) {
	_, err := config.FromFile(filepath.Join(t.TempDir(), "nope.properties"))
	assert.Error(t, err)
}
