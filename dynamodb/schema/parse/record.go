package parse

import (
	"slices"

	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

type recordEntry struct {
	key   Stepper
	value Stepper
	path  string
}

// newRecord parses every entry key against the keys attribute and every
// value against the elements attribute. Entries holding nil are kept as is
// while filling, so updates can express removals, and dropped afterwards.
func newRecord(attr *schema.Frozen, value any, opts Options) Stepper {
	obj, isObject := schema.Object(value)

	var (
		entries []recordEntry
		unset   []string
	)
	if isObject {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if obj[k] == nil {
				unset = append(unset, k)
				continue
			}
			child := opts.child(k)
			entries = append(entries, recordEntry{
				key:   NewRun(attr.Keys(), k, child),
				value: NewRun(attr.Elements(), obj[k], child),
				path:  child.Path,
			})
		}
	}

	return newMachine(opts, func(stage Stage, item map[string]any) (any, error) {
		if !isObject {
			if stage == StageParsed {
				return nil, InvalidInput(opts.Path, value, kindName(attr))
			}
			return schema.Clone(value), nil
		}
		out := make(map[string]any, len(entries)+len(unset))
		for _, e := range entries {
			ks, err := e.key.Next(item)
			if err != nil {
				return nil, err
			}
			vs, err := e.value.Next(item)
			if err != nil {
				return nil, err
			}
			if vs.Value == nil {
				continue
			}
			key, ok := ks.Value.(string)
			if !ok {
				return nil, InvalidInput(e.path, ks.Value, string(schema.KindString))
			}
			out[key] = vs.Value
		}
		if stage == StageDefaulted || stage == StageLinked {
			for _, k := range unset {
				out[k] = nil
			}
		}
		return out, nil
	})
}
