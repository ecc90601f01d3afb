package schemafile

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/index"
	"github.com/acksell/ddbtoolbox/dynamodb/index/val"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/table"
)

// Registry holds the tables and entities built from a document.
type Registry struct {
	tables   map[string]table.TableDefinition
	entities map[string]*entity.Entity
	byTable  map[string][]*entity.Entity
	order    []string
}

// Table looks up a table definition by name.
func (r *Registry) Table(name string) (table.TableDefinition, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Entity looks up an entity by name.
func (r *Registry) Entity(name string) (*entity.Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// Entities returns the entities of a table in declaration order.
func (r *Registry) Entities(tableName string) []*entity.Entity {
	return r.byTable[tableName]
}

// Tables returns the table names in declaration order.
func (r *Registry) Tables() []string {
	return r.order
}

type BuildOption func(*builder)

// WithClock sets the clock of every entity and of "now" generators.
func WithClock(clock func() time.Time) BuildOption {
	return func(b *builder) {
		b.clock = clock
	}
}

type builder struct {
	clock func() time.Time
}

// Build validates the document and creates its tables and entities.
func (d *Document) Build(opts ...BuildOption) (*Registry, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}
	b.clock = nowFunc(b.clock)

	r := &Registry{
		tables:   make(map[string]table.TableDefinition),
		entities: make(map[string]*entity.Entity),
		byTable:  make(map[string][]*entity.Entity),
	}
	for i, t := range d.Tables {
		def, err := t.definition()
		if err != nil {
			return nil, fmt.Errorf("tables[%d]: %w", i, err)
		}
		if _, ok := r.tables[def.Name]; ok {
			return nil, fmt.Errorf("table %q is declared twice", def.Name)
		}
		r.tables[def.Name] = def
		r.order = append(r.order, def.Name)

		for _, ed := range t.Entities {
			if _, ok := r.entities[ed.Name]; ok {
				return nil, fmt.Errorf("table %q: entity %q is declared twice", def.Name, ed.Name)
			}
			e, err := b.entity(def, ed)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", def.Name, err)
			}
			r.entities[ed.Name] = e
			r.byTable[def.Name] = append(r.byTable[def.Name], e)
		}
	}
	return r, nil
}

func (t Table) definition() (table.TableDefinition, error) {
	def := table.TableDefinition{
		Name:                   t.Name,
		KeyDefinitions:         keyDefinition(t.PartitionKey, t.SortKey),
		TimeToLiveKey:          t.TimeToLiveKey,
		EntityAttributeSavedAs: t.EntityAttribute,
	}
	for _, gsi := range t.GSIs {
		def.GSIs = append(def.GSIs, table.GSIDefinition{
			Name:           gsi.Name,
			KeyDefinitions: keyDefinition(gsi.PartitionKey, gsi.SortKey),
		})
	}
	if err := def.Validate(); err != nil {
		return table.TableDefinition{}, err
	}
	return def, nil
}

func keyDefinition(pk KeyDef, sk *KeyDef) table.PrimaryKeyDefinition {
	def := table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: pk.Name, Kind: table.KeyKind(pk.Kind)},
	}
	if sk != nil {
		def.SortKey = table.KeyDef{Name: sk.Name, Kind: table.KeyKind(sk.Kind)}
	}
	return def
}

func (b *builder) entity(t table.TableDefinition, ed Entity) (*entity.Entity, error) {
	if ed.Name == "" {
		return nil, fmt.Errorf("entity name is required")
	}
	fields, err := b.fields(ed.Attributes, ed.Name)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", ed.Name, err)
	}
	idx, err := entityIndex(t, ed)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", ed.Name, err)
	}

	cfg := entity.Config{
		Name:   ed.Name,
		Table:  t,
		Schema: schema.New(fields...),
		Index:  idx,
		Clock:  b.clock,
	}
	if ed.EntityAttribute != nil && !*ed.EntityAttribute {
		cfg.EntityAttribute.Disabled = true
	}
	if ed.Timestamps != nil && !*ed.Timestamps {
		cfg.Timestamps.Created.Disabled = true
		cfg.Timestamps.Modified.Disabled = true
	}
	return entity.New(cfg)
}

// entityIndex returns nil when the entity declares no key patterns.
func entityIndex(t table.TableDefinition, ed Entity) (*index.PrimaryIndex, error) {
	if ed.PartitionKeyPattern == "" {
		if ed.SortKeyPattern != "" || len(ed.GSIMappings) > 0 {
			return nil, fmt.Errorf("sortKeyPattern and gsiMappings require a partitionKeyPattern")
		}
		return nil, nil
	}
	keys := t.KeyDefinitions
	pk, err := valDef(keys.PartitionKey.Kind, ed.PartitionKeyPattern)
	if err != nil {
		return nil, fmt.Errorf("partition key: %w", err)
	}
	pi := &index.PrimaryIndex{Table: t, PartitionKey: pk}
	if ed.SortKeyPattern != "" {
		sk, err := valDef(keys.SortKey.Kind, ed.SortKeyPattern)
		if err != nil {
			return nil, fmt.Errorf("sort key: %w", err)
		}
		pi.SortKey = &sk
	}
	for _, m := range ed.GSIMappings {
		gsi, ok := t.Index(m.GSI)
		if !ok {
			return nil, fmt.Errorf("GSI %q is not declared on table %q", m.GSI, t.Name)
		}
		pk, err := valDef(gsi.KeyDefinitions.PartitionKey.Kind, m.PartitionPattern)
		if err != nil {
			return nil, fmt.Errorf("GSI %q partition key: %w", m.GSI, err)
		}
		si := index.SecondaryIndex{GSI: gsi, Partition: pk}
		if m.SortPattern != "" {
			sk, err := valDef(gsi.KeyDefinitions.SortKey.Kind, m.SortPattern)
			if err != nil {
				return nil, fmt.Errorf("GSI %q sort key: %w", m.GSI, err)
			}
			si.Sort = &sk
		}
		pi.Secondary = append(pi.Secondary, si)
	}
	return pi, nil
}

// valDef turns a key pattern into a value definition. String keys render
// the template. Number and binary keys take a single field reference or
// a constant.
func valDef(kind table.KeyKind, pattern string) (val.ValDef, error) {
	spec, err := val.ParseFmt(pattern)
	if err != nil {
		return val.ValDef{}, err
	}
	if kind == table.KeyKindS || kind == "" {
		return val.ValDef{Format: &spec}, nil
	}
	if refs := spec.FieldRefs(); len(refs) == 1 && pattern == "{"+refs[0]+"}" {
		return val.FromField(refs[0]), nil
	}
	if !spec.IsConstant() {
		return val.ValDef{}, fmt.Errorf("pattern %q can not be rendered into a %s key", pattern, kind)
	}
	switch kind {
	case table.KeyKindN:
		n, err := strconv.ParseFloat(pattern, 64)
		if err != nil {
			return val.ValDef{}, fmt.Errorf("constant %q is not a number", pattern)
		}
		return val.Number(n), nil
	case table.KeyKindB:
		if _, err := base64.StdEncoding.DecodeString(pattern); err != nil {
			return val.ValDef{}, fmt.Errorf("constant %q is not base64: %w", pattern, err)
		}
		return val.Bytes(pattern), nil
	}
	return val.ValDef{}, fmt.Errorf("unknown key kind %q", kind)
}
