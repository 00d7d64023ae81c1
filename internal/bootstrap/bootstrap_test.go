package bootstrap

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mendozape/PayComMobile/config"
	"github.com/Mendozape/PayComMobile/internal/adapters/api"
	"github.com/Mendozape/PayComMobile/internal/adapters/devbackend"
	"github.com/Mendozape/PayComMobile/internal/adapters/filestore"
	"github.com/Mendozape/PayComMobile/internal/data/cryptoutil"
	"github.com/Mendozape/PayComMobile/internal/domain/model"
	"github.com/Mendozape/PayComMobile/internal/service"
)

func mockConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := &config.AppConfig{
		IsDev: true,
		API:   config.APIConfig{BaseURL: "http://localhost:8000/api", StorageURL: "http://cdn.local"},
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			DevBackend: config.DevBackendConfig{
				Name:     "Dev Admin",
				Email:    "dev@example.com",
				Password: "password",
				Roles:    []string{"Admin"},
				Secret:   "test-secret",
				TokenTTL: time.Hour,
				Seed:     true,
			},
		},
		Session: config.SessionConfig{
			Store:         config.StoreFile,
			File:          filepath.Join(t.TempDir(), "session.json"),
			EncryptionKey: "correct horse battery staple",
		},
	}
	cfg.Sanitize()
	return cfg
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(&buf, true)
	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
}

func TestValidateConfig(t *testing.T) {
	require.Error(t, ValidateConfig(nil))

	cfg := mockConfig(t)
	require.NoError(t, ValidateConfig(cfg))

	cfg.Auth.Mode = config.AuthModeAPI
	cfg.API.BaseURL = ""
	require.Error(t, ValidateConfig(cfg))

	cfg = mockConfig(t)
	cfg.Session.Store = config.StoreRedis
	cfg.Redis.UseSentinel = true
	require.Error(t, ValidateConfig(cfg))
}

func TestCreateEncryptor(t *testing.T) {
	noop, err := CreateEncryptor("", nil)
	require.NoError(t, err)
	assert.IsType(t, cryptoutil.NoopEncryptor{}, noop)

	hexKey := strings.Repeat("ab", 32)
	fromHex, err := CreateEncryptor(hexKey, nil)
	require.NoError(t, err)
	fromPass, err := CreateEncryptor("passphrase", nil)
	require.NoError(t, err)

	sealed, err := fromHex.Encrypt([]byte("token"))
	require.NoError(t, err)
	opened, err := fromHex.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "token", string(opened))

	_, err = fromPass.Decrypt(sealed)
	assert.Error(t, err, "different keys must not open each other's records")
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{URI: "localhost:6380", Password: "pw", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(config.RedisConfig{URI: "redis://:secret@cache:6379/3", Password: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = redisOptions(config.RedisConfig{})
	require.Error(t, err)

	_, _, err = newSentinelClient(config.RedisConfig{SentinelNodes: []string{" "}})
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(config.DBConfig{Host: "db", Port: 5432, User: "pay com", Password: "p@ss", Name: "paycom", SSLMode: "disable"})
	assert.Equal(t, "postgres://pay%20com:p%40ss@db:5432/paycom?sslmode=disable", dsn)
}

func TestBuildBackends(t *testing.T) {
	ctx := context.Background()

	cfg := mockConfig(t)
	cfg.Auth.Mode = config.AuthModeAPI
	cfg.API.StorageURL = ""
	b, err := BuildBackends(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &api.Client{}, b.Auth)
	assert.Equal(t, "http://localhost:8000", b.Origin)

	cfg = mockConfig(t)
	b, err = BuildBackends(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &devbackend.Backend{}, b.Auth)
	assert.IsType(t, &devbackend.Resources{}, b.Resources)
	assert.Equal(t, "http://cdn.local", b.Origin)
}

func TestBuildSessionStore_File(t *testing.T) {
	cfg := mockConfig(t)
	h, err := BuildSessionStore(context.Background(), StoreDeps{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	assert.Equal(t, config.StoreFile, h.Kind)
	fs, ok := h.Store.(*filestore.Store)
	require.True(t, ok)
	assert.Equal(t, cfg.Session.File, fs.Path())
}

func TestNewApp_MockLoginSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := mockConfig(t)

	app, err := NewApp(ctx, AppDeps{Config: cfg})
	require.NoError(t, err)

	res, err := app.Sessions.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.StateUnauthenticated, res.State)

	_, err = app.Sessions.Login(ctx, "dev@example.com", "password")
	require.NoError(t, err)
	streets, err := app.Resources.List(ctx, model.Streets, service.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, streets, 3)
	require.NoError(t, app.Close())

	restarted, err := NewApp(ctx, AppDeps{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = restarted.Close() })

	res, err = restarted.Sessions.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.StateAuthenticated, res.State)
	assert.True(t, res.Refreshed)

	user, err := restarted.Sessions.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Dev Admin", user.Name)
}

func TestNewApp_MockLoginSurvivesRestartWithoutSecret(t *testing.T) {
	ctx := context.Background()
	cfg := mockConfig(t)
	cfg.Auth.DevBackend.Secret = ""

	var logs bytes.Buffer
	logger := InitLogger(&logs, false)

	app, err := NewApp(ctx, AppDeps{Config: cfg, Logger: logger})
	require.NoError(t, err)
	_, err = app.Sessions.Login(ctx, "dev@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, app.Close())
	assert.Contains(t, logs.String(), "DEV_BACKEND_SECRET is empty")

	restarted, err := NewApp(ctx, AppDeps{Config: cfg, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = restarted.Close() })

	res, err := restarted.Sessions.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.StateAuthenticated, res.State)
	assert.True(t, res.Refreshed)

	streets, err := restarted.Resources.List(ctx, model.Streets, service.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, streets, 3)
}

func TestDeriveDevSecret(t *testing.T) {
	cfg := mockConfig(t)
	first, err := deriveDevSecret(cfg)
	require.NoError(t, err)
	again, err := deriveDevSecret(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Len(t, first, 64)

	other := mockConfig(t)
	moved, err := deriveDevSecret(other)
	require.NoError(t, err)
	assert.NotEqual(t, first, moved, "a different session file gets a different secret")

	cfg.Session.Store = config.StoreRedis
	redis, err := deriveDevSecret(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first, redis)
}
