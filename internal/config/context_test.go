package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildwatch/sightings/internal/buildinfo"
	"github.com/wildwatch/sightings/internal/datastore"
)

func TestContext_BeforeLoad(t *testing.T) {
	c := NewContext(buildinfo.NewContext("1.0.0", ""))

	assert.Nil(t, c.Settings)
	assert.NotNil(t, c.Logger(), "a fallback logger is available before Load")

	_, err := c.OpenStore(t.Context(), nil)
	require.ErrorIs(t, err, datastore.ErrNotConnected)
	assert.NoError(t, c.Close())
}

func TestContext_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: warn
  file:
    enabled: true
    path: ` + filepath.Join(dir, "logs", "sightings.log") + `
database:
  name: ducks
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c := NewContext(buildinfo.NewContext("1.0.0", ""))
	require.NoError(t, c.Load(path))
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.Settings)
	assert.Equal(t, "ducks", c.Settings.Database.Name)
	assert.Equal(t, "warn", c.Settings.Logging.Level)

	log := c.Logger()
	log.Info("below the configured level")
	log.Warn("unscoped warning")
	log.Module("serve").Warn("scoped warning")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(filepath.Join(dir, "logs", "sightings.log"))
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "below the configured level")
	assert.Contains(t, out, "unscoped warning")
	assert.Contains(t, out, `"module":"serve"`)
}

func TestContext_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webserver:\n  port: \"not-a-port\"\n"), 0o600))

	c := NewContext(nil)
	require.Error(t, c.Load(path))
	assert.Nil(t, c.Settings)
}
