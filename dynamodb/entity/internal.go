package entity

import (
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/update"
)

func internalAttributes(cfg Config) []schema.Field {
	var fields []schema.Field
	if a := cfg.EntityAttribute; !a.Disabled {
		attr := schema.Constant(cfg.Name).
			SavedAs(nameOr(a.SavedAs, cfg.Table.EntityAttribute())).
			PutDefault(cfg.Name).
			UpdateDefault(cfg.Name)
		if a.Hidden == nil || *a.Hidden {
			attr = attr.Hidden()
		}
		fields = append(fields, schema.Named(nameOr(a.Name, DefaultEntityAttributeName), attr))
	}

	now := func() string {
		return cfg.Clock().UTC().Format(TimestampLayout)
	}
	if a := cfg.Timestamps.Created; !a.Disabled {
		attr := schema.String().
			SavedAs(nameOr(a.SavedAs, DefaultCreatedSavedAs)).
			PutDefault(schema.ValueGetter(func() any { return now() })).
			UpdateDefault(schema.ValueGetter(func() any { return update.IfNotExists(now()) }))
		if a.Hidden != nil && *a.Hidden {
			attr = attr.Hidden()
		}
		fields = append(fields, schema.Named(nameOr(a.Name, DefaultCreatedName), attr))
	}
	if a := cfg.Timestamps.Modified; !a.Disabled {
		getNow := schema.ValueGetter(func() any { return now() })
		attr := schema.String().
			SavedAs(nameOr(a.SavedAs, DefaultModifiedSavedAs)).
			PutDefault(getNow).
			UpdateDefault(getNow)
		if a.Hidden != nil && *a.Hidden {
			attr = attr.Hidden()
		}
		fields = append(fields, schema.Named(nameOr(a.Name, DefaultModifiedName), attr))
	}
	return fields
}

// checkReserved rejects schemas using the names of internal attributes.
func checkReserved(s *schema.Schema, internal []schema.Field) error {
	names := make(map[string]bool)
	stored := make(map[string]bool)
	for _, f := range s.Fields() {
		names[f.Name] = true
		stored[f.StorageName()] = true
	}
	for _, f := range internal {
		switch {
		case names[f.Name]:
			return reserved(f.Name)
		case stored[f.StorageName()]:
			return reserved(f.StorageName())
		}
	}
	return nil
}

func reserved(name string) error {
	return ddberr.New(ddberr.EntityReservedAttributeName,
		fmt.Sprintf("'%s' is a reserved attribute name.", name),
		ddberr.WithPath(name))
}
