package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.EqualValues(t, 8188, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 2, cfg.Global.ShutdownTimeoutInSeconds)
	assert.False(t, cfg.Global.ReadOnly)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 10, cfg.UI.ItemsPerPage)
	assert.Equal(t, "transactional", cfg.Booklist.CommitMode)
	assert.Equal(t, 4, cfg.Booklist.CommitConcurrency)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.True(t, cfg.Cleanup.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Cleanup.Schedule)
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.GracePeriod)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.CSRF.Enabled)
	assert.False(t, cfg.CSRF.SecureCookies)
}

func TestNewConfig_Env(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=shop")
	t.Setenv("BOOKLIST_COMMIT_MODE", "fanout")
	t.Setenv("CLEANUP_GRACE_PERIOD", "90m")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("READ_ONLY", "true")
	t.Setenv("CSRF_SECRET", "s3cr3t")

	cfg := NewConfig()

	assert.EqualValues(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=shop", cfg.Database.DSN)
	assert.Equal(t, "fanout", cfg.Booklist.CommitMode)
	assert.Equal(t, 90*time.Minute, cfg.Cleanup.GracePeriod)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Global.ReadOnly)
	assert.Equal(t, "s3cr3t", cfg.CSRF.Secret)
}

func TestCSRF_Key(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef"

	key, err := CSRF{Secret: raw}.Key()
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), key)

	key, err = CSRF{Secret: strings.Repeat("ab", 32)}.Key()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0xab), key[0])

	first, err := CSRF{}.Key()
	require.NoError(t, err)
	second, err := CSRF{}.Key()
	require.NoError(t, err)
	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)

	_, err = CSRF{Secret: "short"}.Key()
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ITEMS_PER_PAGE=25\nPORT=7000\n"), 0o600))
	t.Setenv("PORT", "9100")
	t.Setenv("ITEMS_PER_PAGE", "")
	os.Unsetenv("ITEMS_PER_PAGE")

	LoadEnv(path)

	cfg := NewConfig()
	assert.Equal(t, 25, cfg.UI.ItemsPerPage)
	assert.EqualValues(t, 9100, cfg.HTTP.Port)
}
