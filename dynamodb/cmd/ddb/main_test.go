package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
tables:
  - name: app
    partitionKey: {name: pk, kind: S}
    sortKey: {name: sk, kind: S}
    entities:
      - name: user
        timestamps: false
        partitionKeyPattern: "USER#{id}"
        sortKeyPattern: "PROFILE"
        attributes:
          - {name: id, type: string, key: true}
          - {name: name, type: string, savedAs: n}
          - {name: role, type: string, default: member}
`

func writeSchema(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, schemaFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	writeSchema(t, root, testSchema)
	nested := filepath.Join(root, "services", "billing")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeSchema(t, nested, testSchema)
	skipped := filepath.Join(root, "_archive")
	require.NoError(t, os.MkdirAll(skipped, 0o755))
	writeSchema(t, skipped, "tables: [{name: broken}]")

	var out bytes.Buffer
	require.NoError(t, runCheck([]string{"-dir", root}, streams{out: &out}))
	assert.Equal(t, 2, strings.Count(out.String(), "ok   "))
	assert.Contains(t, out.String(), "entities: user")

	out.Reset()
	bad := writeSchema(t, skipped, "tables: [{name: broken}]")
	err := runCheck([]string{bad}, streams{out: &out})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "FAIL")
}

func TestParseAndFormat(t *testing.T) {
	path := writeSchema(t, t.TempDir(), testSchema)

	var out bytes.Buffer
	in := strings.NewReader(`{"id": "1", "name": "Ada"}`)
	require.NoError(t, runParse([]string{"-schema", path, "-entity", "user"}, streams{in: in, out: &out}))

	var parsed struct {
		Item map[string]any `json:"item"`
		Key  map[string]any `json:"key"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	assert.Equal(t, map[string]any{"pk": "USER#1", "sk": "PROFILE"}, parsed.Key)
	assert.Equal(t, "Ada", parsed.Item["n"])
	assert.Equal(t, "member", parsed.Item["role"])

	stored, err := json.Marshal(parsed.Item)
	require.NoError(t, err)
	out.Reset()
	args := []string{"-schema", path, "-entity", "user", "-attributes", "name,role"}
	require.NoError(t, runFormat(args, streams{in: bytes.NewReader(stored), out: &out}))

	var formatted map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &formatted))
	assert.Equal(t, map[string]any{"name": "Ada", "role": "member"}, formatted)
}

func TestParse_Errors(t *testing.T) {
	path := writeSchema(t, t.TempDir(), testSchema)

	err := runParse([]string{"-schema", path}, streams{in: strings.NewReader(`{}`)})
	assert.ErrorContains(t, err, "-entity is required")

	err = runParse([]string{"-schema", path, "-entity", "order"}, streams{in: strings.NewReader(`{}`)})
	assert.ErrorContains(t, err, "not declared")

	err = runParse([]string{"-schema", path, "-entity", "user", "-mode", "delete"}, streams{in: strings.NewReader(`{}`)})
	assert.ErrorContains(t, err, "unknown mode")

	err = runParse([]string{"-schema", path, "-entity", "user"}, streams{in: strings.NewReader(`not json`)})
	assert.ErrorContains(t, err, "JSON")

	err = runParse([]string{"-schema", path, "-entity", "user"}, streams{in: strings.NewReader(`{"name": "Ada"}`)})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, configFilename), []byte("schema: db/schema.yaml\nlogLevel: debug\n"), 0o644))
	sub := filepath.Join(root, "cmd", "app")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "db", "schema.yaml"), cfg.Schema)
	level, err := cfg.level()
	require.NoError(t, err)
	assert.Equal(t, "debug", level.String())
}
