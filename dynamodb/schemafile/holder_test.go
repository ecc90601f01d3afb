package schemafile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneTable = `
tables:
  - name: app
    partitionKey: {name: pk, kind: S}
`

func TestHolder_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema_dynamodb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(oneTable), 0o644))

	var logs bytes.Buffer
	h, err := NewHolder(path, zerolog.New(&logs), WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, h.Get().Tables())

	var notified *Registry
	h.OnChange(func(r *Registry) { notified = r })

	require.NoError(t, os.WriteFile(path, []byte(appSchema), 0o644))
	require.NoError(t, h.Reload())
	assert.Equal(t, []string{"app", "counters"}, h.Get().Tables())
	assert.Same(t, h.Get(), notified)

	require.NoError(t, os.WriteFile(path, []byte("tables: [{name: broken}]"), 0o644))
	assert.Error(t, h.Reload())
	assert.Equal(t, []string{"app", "counters"}, h.Get().Tables(), "failed reload keeps the previous schema")
	assert.Contains(t, logs.String(), "schema reload failed")
}

func TestHolder_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema_dynamodb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables: [{name: broken}]"), 0o644))
	_, err := NewHolder(path, zerolog.Nop())
	assert.Error(t, err)
}

func TestHolder_WatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema_dynamodb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(oneTable), 0o644))

	h, err := NewHolder(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, h.WatchFile())
	defer h.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(appSchema), 0o644))
	assert.Eventually(t, func() bool {
		return len(h.Get().Tables()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
