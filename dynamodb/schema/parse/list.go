package parse

import "github.com/acksell/ddbtoolbox/dynamodb/schema"

// newList parses lists and sets. Every element is parsed on its own and
// must be defined.
func newList(attr *schema.Frozen, value any, opts Options) Stepper {
	elems, isList := schema.Slice(value)
	children := make([]Stepper, len(elems))
	for i, e := range elems {
		children[i] = NewRun(attr.Elements(), e, opts.element(i))
	}
	isSet := attr.Kind() == schema.KindSet

	collect := func(item map[string]any) ([]any, error) {
		out := make([]any, len(children))
		for i, c := range children {
			step, err := c.Next(item)
			if err != nil {
				return nil, err
			}
			out[i] = step.Value
		}
		return out, nil
	}

	return newMachine(opts, func(stage Stage, item map[string]any) (any, error) {
		if !isList {
			if stage == StageParsed {
				return nil, InvalidInput(opts.Path, value, kindName(attr))
			}
			return value, nil
		}
		out, err := collect(item)
		if err != nil {
			return nil, err
		}
		if !isSet {
			return out, nil
		}
		if stage == StageParsed {
			seen := make(schema.Set, 0, len(out))
			for _, e := range out {
				if seen.Contains(e) {
					return nil, duplicateSetElement(opts.Path, e)
				}
				seen = append(seen, e)
			}
		}
		return schema.Set(out), nil
	})
}
