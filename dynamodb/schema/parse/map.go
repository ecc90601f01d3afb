package parse

import (
	"slices"

	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

type mapChild struct {
	attr *schema.Frozen
	run  Stepper
}

// newMap parses maps and whole items. Declared attributes are parsed on
// their own. Undeclared ones are kept while filling, then rejected unless
// the map is open. Open maps reject extras named like the storage name of a
// declared attribute. When computing keys, items only contribute their key
// attributes and everything else is ignored.
func newMap(attr *schema.Frozen, value any, opts Options) Stepper {
	obj, isObject := schema.Object(value)
	fs := attr.Schema()
	keyOnly := attr.IsRoot() && opts.Mode == schema.ModeKey

	var (
		children  []mapChild
		extras    []string
		defaulted map[string]any
	)
	if isObject {
		for _, name := range fs.Names() {
			a, _ := fs.Attribute(name)
			if keyOnly && !a.IsKey() {
				continue
			}
			children = append(children, mapChild{attr: a, run: NewRun(a, obj[name], opts.child(name))})
		}
		for k := range obj {
			if a, declared := fs.Attribute(k); !declared || (keyOnly && !a.IsKey()) {
				extras = append(extras, k)
			}
		}
		slices.Sort(extras)
	}

	return newMachine(opts, func(stage Stage, item map[string]any) (any, error) {
		if !isObject {
			if stage != StageParsed {
				return schema.Clone(value), nil
			}
			if attr.IsRoot() {
				return nil, invalidItem(value)
			}
			return nil, InvalidInput(opts.Path, value, kindName(attr))
		}
		if stage == StageParsed && len(extras) > 0 && !fs.Open() && !keyOnly {
			return nil, unknownAttribute(opts.child(extras[0]).Path)
		}
		if stage == StageParsed && fs.Open() && !keyOnly {
			for _, k := range extras {
				if name, ok := fs.NameOf(k); ok && obj[k] != nil {
					return nil, savedAsConflict(opts.child(k).Path, name)
				}
			}
		}

		if stage == StageLinked && attr.IsRoot() && item == nil {
			item = defaulted
		}

		out := make(map[string]any, len(children)+len(extras))
		for _, c := range children {
			step, err := c.run.Next(item)
			if err != nil {
				return nil, err
			}
			if step.Value == nil {
				continue
			}
			name := c.attr.Name()
			if stage == StageTransformed {
				name = c.attr.StorageName()
			}
			out[name] = step.Value
		}

		filling := stage == StageDefaulted || stage == StageLinked
		if filling || (fs.Open() && !keyOnly) {
			for _, k := range extras {
				if obj[k] != nil {
					out[k] = schema.Clone(obj[k])
				}
			}
		}
		if stage == StageDefaulted {
			defaulted = out
		}
		return out, nil
	})
}
