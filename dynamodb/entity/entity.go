// Package entity binds a schema to a table. An entity parses application
// items into the attributes stored in the table, derives their primary key
// and formats stored items back.
//
//	var Users = entity.MustNew(entity.Config{
//	    Name:  "user",
//	    Table: UsersTable,
//	    Schema: schema.New(
//	        schema.Named("id", schema.String().Key().SavedAs("pk")),
//	        schema.Named("name", schema.String()),
//	    ),
//	})
package entity

import (
	"fmt"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/index"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/format"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/parse"
	"github.com/acksell/ddbtoolbox/dynamodb/table"
)

// KeyFunc derives the table's key attributes from a parsed item.
type KeyFunc func(item map[string]any) (map[string]any, error)

type Config struct {
	Name   string
	Schema *schema.Schema
	Table  table.TableDefinition

	// ComputeKey derives the primary key. Without it, the key attributes of
	// the schema must be saved as the table's key attributes.
	ComputeKey KeyFunc
	// Index derives the primary key from templates when ComputeKey is nil,
	// and the GSI keys written with every put.
	Index *index.PrimaryIndex

	// EntityAttribute stores the entity name on every item, hidden by default.
	EntityAttribute InternalAttribute
	Timestamps      Timestamps
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// InternalAttribute configures an attribute the entity adds to its schema.
// Zero values select the defaults.
type InternalAttribute struct {
	Disabled bool
	Name     string
	SavedAs  string
	Hidden   *bool
}

type Timestamps struct {
	Created  InternalAttribute
	Modified InternalAttribute
}

const (
	DefaultEntityAttributeName = "entity"
	DefaultCreatedName         = "created"
	DefaultCreatedSavedAs      = "_ct"
	DefaultModifiedName        = "modified"
	DefaultModifiedSavedAs     = "_md"
)

// TimestampLayout is ISO 8601 with milliseconds in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Entity struct {
	name  string
	table table.TableDefinition

	schema    *schema.FrozenSchema
	parser    *parse.Parser
	formatter *format.Formatter
	keyParser *table.PrimaryKeyParser

	computeKey KeyFunc
	index      *index.PrimaryIndex

	entityAttr string
}

func New(cfg Config) (*Entity, error) {
	if cfg.Name == "" {
		return nil, ddberr.New(ddberr.EntityInvalidSchema, "Entity name is required.")
	}
	if cfg.Schema == nil {
		return nil, ddberr.New(ddberr.EntityInvalidSchema, fmt.Sprintf("Entity %q has no schema.", cfg.Name))
	}
	if err := cfg.Table.Validate(); err != nil {
		return nil, ddberr.New(ddberr.EntityInvalidSchema, fmt.Sprintf("Entity %q table: %v", cfg.Name, err), ddberr.WithCause(err))
	}
	if cfg.Index != nil {
		if err := cfg.Index.Validate(); err != nil {
			return nil, ddberr.New(ddberr.EntityInvalidSchema, fmt.Sprintf("Entity %q index: %v", cfg.Name, err), ddberr.WithCause(err))
		}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	internal := internalAttributes(cfg)
	if err := checkReserved(cfg.Schema, internal); err != nil {
		return nil, err
	}
	fs, err := cfg.Schema.And(internal...).Freeze()
	if err != nil {
		return nil, err
	}

	keyParser, err := cfg.Table.KeyParser()
	if err != nil {
		return nil, ddberr.New(ddberr.EntityInvalidSchema, err.Error(), ddberr.WithCause(err))
	}
	e := &Entity{
		name:       cfg.Name,
		table:      cfg.Table,
		schema:     fs,
		parser:     parse.New(fs),
		formatter:  format.New(fs),
		keyParser:  keyParser,
		computeKey: cfg.ComputeKey,
		index:      cfg.Index,
	}
	if !cfg.EntityAttribute.Disabled {
		e.entityAttr = nameOr(cfg.EntityAttribute.Name, DefaultEntityAttributeName)
	}
	if e.computeKey == nil && e.index != nil {
		e.computeKey = e.index.ComputeKey
	}
	if e.computeKey == nil {
		if err := e.checkKeyCoverage(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// MustNew is New for entities declared at package level.
func MustNew(cfg Config) *Entity {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Entity) Name() string                 { return e.name }
func (e *Entity) Table() table.TableDefinition { return e.table }
func (e *Entity) Schema() *schema.FrozenSchema { return e.schema }

// EntityAttribute returns the name of the entity attribute, or "" if disabled.
func (e *Entity) EntityAttribute() string {
	return e.entityAttr
}

// EntityAttributeSavedAs returns the storage name of the entity attribute,
// or "" if disabled.
func (e *Entity) EntityAttributeSavedAs() string {
	if e.entityAttr == "" {
		return ""
	}
	attr, ok := e.schema.Attribute(e.entityAttr)
	if !ok {
		return ""
	}
	return attr.StorageName()
}

// checkKeyCoverage makes sure parsing the key attributes yields every table
// key attribute.
func (e *Entity) checkKeyCoverage() error {
	stored := make(map[string]*schema.Frozen)
	for _, name := range e.schema.KeyNames() {
		a, _ := e.schema.Attribute(name)
		stored[a.StorageName()] = a
	}
	for _, k := range []table.KeyDef{e.table.KeyDefinitions.PartitionKey, e.table.KeyDefinitions.SortKey} {
		if k.Name == "" {
			continue
		}
		a, ok := stored[k.Name]
		if !ok {
			return ddberr.New(ddberr.EntityInvalidSchema,
				fmt.Sprintf("Entity %q has no key attribute saved as %q and no ComputeKey.", e.name, k.Name),
				ddberr.WithPayload(map[string]any{"entity": e.name, "keyAttribute": k.Name}))
		}
		if want := k.Kind.Attribute().Kind(); a.Kind() != want {
			return ddberr.New(ddberr.EntityInvalidSchema,
				fmt.Sprintf("Entity %q key attribute %q should be a %s.", e.name, a.Name(), want),
				ddberr.WithPath(a.Path()),
				ddberr.WithPayload(map[string]any{"entity": e.name, "keyAttribute": k.Name}))
		}
	}
	return nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
