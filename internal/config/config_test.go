package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "board:\n  info_path: boards/board1.json\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.PublicKeyRefreshHrs)
	assert.False(t, cfg.JWT.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "hexboard:", cfg.Redis.CachePrefix)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL())
	assert.Equal(t, "board", cfg.Board.ID)
	assert.Equal(t, 0, cfg.Propagation.Direction)
	assert.Equal(t, 1.0, *cfg.Propagation.Spread)
	assert.Equal(t, 1.0, *cfg.Propagation.Reach)
	assert.Equal(t, 16.0, cfg.Propagation.MaxBudget)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
jwt:
  issuer: login
  public_key_url: http://login/key
redis:
  address: localhost:6379
  cache_ttl_seconds: 30
board:
  id: arena
  info_path: arena.json
  placements_path: arena_placements.yaml
propagation:
  direction: 4
  spread: 0
  reach: 2.5
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.JWT.Enabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL())
	assert.Equal(t, "arena", cfg.Board.ID)
	assert.Equal(t, "arena_placements.yaml", cfg.Board.PlacementsPath)
	assert.Equal(t, 4, cfg.Propagation.Direction)
	assert.Equal(t, 0.0, *cfg.Propagation.Spread)
	assert.Equal(t, 2.5, *cfg.Propagation.Reach)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server:\n  port: 1\n"))
	assert.Error(t, err)
}

func TestLoadPropagationBudget(t *testing.T) {
	base := "board:\n  info_path: boards/board1.json\npropagation:\n"

	cfg, err := Load(writeConfig(t, base+"  max_budget: 40\n  spread: 40\n"))
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Propagation.MaxBudget)
	assert.Equal(t, 40.0, *cfg.Propagation.Spread)

	for name, body := range map[string]string{
		"spread over default": "  spread: 17\n",
		"reach over budget":   "  max_budget: 4\n  reach: 5\n",
		"infinite spread":     "  spread: .inf\n",
		"negative budget":     "  max_budget: -1\n",
		"budget over ceiling": "  max_budget: 1e17\n",
		"not a number budget": "  max_budget: .nan\n",
	} {
		_, err := Load(writeConfig(t, base+body))
		assert.Error(t, err, name)
	}
}
