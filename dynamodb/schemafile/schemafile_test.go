package schemafile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appSchema = `
tables:
  - name: app
    partitionKey: {name: pk, kind: S}
    sortKey: {name: sk, kind: S}
    timeToLiveKey: ttl
    gsis:
      - name: byEmail
        partitionKey: {name: gsi1pk, kind: S}
    entities:
      - name: user
        partitionKeyPattern: "USER#{id}"
        sortKeyPattern: "PROFILE"
        gsiMappings:
          - gsi: byEmail
            partitionPattern: "EMAIL#{email}"
        attributes:
          - {name: id, type: string, key: true}
          - {name: email, type: string, optional: true}
          - {name: role, type: string, enum: [admin, member], default: member}
          - {name: token, type: string, generate: uuid, hidden: true}
          - {name: seen, type: string, generate: now}
          - name: tags
            type: set
            optional: true
            elements: {type: string}
          - name: address
            type: map
            optional: true
            attributes:
              - {name: city, type: string}
              - {name: zip, type: string, savedAs: z}
          - name: scores
            type: record
            optional: true
            keys: {type: string}
            elements: {type: number}
      - name: session
        timestamps: false
        attributes:
          - {name: user, type: string, key: true, savedAs: pk, prefix: "USER#"}
          - {name: id, type: string, key: true, savedAs: sk, prefix: "SESSION#"}
  - name: counters
    partitionKey: {name: pk, kind: N}
    entities:
      - name: counter
        entityAttribute: false
        partitionKeyPattern: "{n}"
        attributes:
          - {name: n, type: number, key: true}
          - {name: label, type: anyOf, candidates: [{type: string}, {type: number}]}
`

func clock() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC)
}

func build(t *testing.T, src string) *Registry {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	reg, err := doc.Build(WithClock(clock))
	require.NoError(t, err)
	return reg
}

func TestBuild_Tables(t *testing.T) {
	reg := build(t, appSchema)

	assert.Equal(t, []string{"app", "counters"}, reg.Tables())
	app, ok := reg.Table("app")
	require.True(t, ok)
	assert.Equal(t, "ttl", app.TimeToLiveKey)
	assert.Equal(t, table.KeyKindS, app.KeyDefinitions.SortKey.Kind)
	gsi, ok := app.Index("byEmail")
	require.True(t, ok)
	assert.Equal(t, "gsi1pk", gsi.KeyDefinitions.PartitionKey.Name)

	var names []string
	for _, e := range reg.Entities("app") {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"user", "session"}, names)
}

func TestBuild_EntityWithKeyPatterns(t *testing.T) {
	reg := build(t, appSchema)
	users, ok := reg.Entity("user")
	require.True(t, ok)

	p, err := users.Parse(map[string]any{
		"id":      "1",
		"email":   "ada@example.com",
		"address": map[string]any{"city": "London", "zip": "N1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "USER#1", p.Item["pk"])
	assert.Equal(t, "PROFILE", p.Item["sk"])
	assert.Equal(t, "EMAIL#ada@example.com", p.Item["gsi1pk"])
	assert.Equal(t, "member", p.Item["role"])
	assert.Equal(t, "2024-01-02T03:04:05.006Z", p.Item["seen"])
	assert.Equal(t, "user", p.Item["_et"])
	assert.Equal(t, map[string]any{"city": "London", "z": "N1"}, p.Item["address"])
	token, ok := p.Item["token"].(string)
	require.True(t, ok)
	assert.Len(t, token, 36)

	formatted, err := users.Format(p.Item)
	require.NoError(t, err)
	assert.NotContains(t, formatted, "token")
	assert.Equal(t, map[string]any{"city": "London", "zip": "N1"}, formatted["address"])

	_, err = users.Parse(map[string]any{"id": "1", "role": "owner"})
	assert.Error(t, err)
}

func TestBuild_SparseGSI(t *testing.T) {
	users, _ := build(t, appSchema).Entity("user")
	p, err := users.Parse(map[string]any{"id": "2"})
	require.NoError(t, err)
	assert.NotContains(t, p.Item, "gsi1pk")
}

func TestBuild_EntityWithSavedKeys(t *testing.T) {
	sessions, ok := build(t, appSchema).Entity("session")
	require.True(t, ok)

	p, err := sessions.Parse(map[string]any{"user": "1", "id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "USER#1", p.Item["pk"])
	assert.Equal(t, "SESSION#abc", p.Item["sk"])
	assert.NotContains(t, p.Item, "_ct")
	assert.NotContains(t, p.Item, "_md")
}

func TestBuild_NumberKey(t *testing.T) {
	counters, ok := build(t, appSchema).Entity("counter")
	require.True(t, ok)
	assert.Empty(t, counters.EntityAttribute())

	p, err := counters.Parse(map[string]any{"n": 3, "label": "three"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, p.Item["pk"])
}

func TestBuild_Invalid(t *testing.T) {
	withEntities := func(entities string) string {
		return `
tables:
  - name: app
    partitionKey: {name: pk, kind: S}
    gsis:
      - name: byEmail
        partitionKey: {name: gsi1pk, kind: S}
    entities:
` + entities
	}
	tests := []struct {
		name string
		src  string
	}{
		{"unknown type", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: id, type: text}]`)},
		{"unknown required", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: id, type: string, required: sometimes}]`)},
		{"set without elements", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: tags, type: set}]`)},
		{"record without keys", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: scores, type: record, elements: {type: number}}]`)},
		{"default and generate", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: id, type: string, default: x, generate: uuid}]`)},
		{"unknown generator", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: id, type: string, generate: sequence}]`)},
		{"duplicate attribute", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: id, type: string}, {name: id, type: number}]`)},
		{"unknown GSI", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        gsiMappings: [{gsi: byName, partitionPattern: "{id}"}]
        attributes: [{name: id, type: string}]`)},
		{"GSI without key pattern", withEntities(`
      - name: user
        gsiMappings: [{gsi: byEmail, partitionPattern: "{id}"}]
        attributes: [{name: id, type: string, key: true, savedAs: pk}]`)},
		{"no key source", withEntities(`
      - name: user
        attributes: [{name: id, type: string}]`)},
		{"duplicate entity", withEntities(`
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: id, type: string}]
      - name: user
        partitionKeyPattern: "USER#{id}"
        attributes: [{name: id, type: string}]`)},
		{"invalid table", `
tables:
  - name: app
    partitionKey: {name: pk, kind: X}`},
		{"duplicate table", `
tables:
  - name: app
    partitionKey: {name: pk, kind: S}
  - name: app
    partitionKey: {name: pk, kind: S}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			require.NoError(t, err)
			_, err = doc.Build()
			assert.Error(t, err)
		})
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("tables:\n  - name: app\n    partitionKey: {name: pk, kind: S}\n    billing: PAY_PER_REQUEST\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Tables)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema_dynamodb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(appSchema), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 2)
	assert.Len(t, doc.Tables[0].Entities, 2)

	out, err := doc.Marshal()
	require.NoError(t, err)
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, doc, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValDef(t *testing.T) {
	v, err := valDef(table.KeyKindS, "USER#{id}")
	require.NoError(t, err)
	assert.Equal(t, "USER#{id}", v.Format.String())

	v, err = valDef(table.KeyKindN, "{n}")
	require.NoError(t, err)
	assert.Equal(t, "n", v.FromField)

	v, err = valDef(table.KeyKindN, "42")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.Const.Value)

	_, err = valDef(table.KeyKindN, "N#{n}")
	assert.Error(t, err)
	_, err = valDef(table.KeyKindB, "not base64!")
	assert.Error(t, err)
	_, err = valDef(table.KeyKindS, "USER#{}")
	assert.Error(t, err)
}
