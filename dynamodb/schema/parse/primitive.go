package parse

import "github.com/acksell/ddbtoolbox/dynamodb/schema"

func newPrimitive(attr *schema.Frozen, value any, opts Options) Stepper {
	var parsed any
	return newMachine(opts, func(stage Stage, _ map[string]any) (any, error) {
		switch stage {
		case StageDefaulted:
			value = schema.Clone(value)
			return value, nil
		case StageLinked:
			return value, nil
		case StageParsed:
			if !schema.MatchesKind(attr.Kind(), value) {
				return nil, InvalidInput(opts.Path, value, kindName(attr))
			}
			if !attr.InEnum(value) {
				return nil, notInEnum(opts.Path, value, attr.Enum())
			}
			parsed = value
			return parsed, nil
		default:
			t := attr.Transformer()
			if t == nil {
				return parsed, nil
			}
			v, err := t.Encode(parsed)
			if err != nil {
				return nil, transformFailed(opts.Path, parsed, err)
			}
			return v, nil
		}
	})
}

func newConstant(attr *schema.Frozen, value any, opts Options) Stepper {
	return newMachine(opts, func(stage Stage, _ map[string]any) (any, error) {
		switch stage {
		case StageDefaulted:
			value = schema.Clone(value)
		case StageParsed:
			if want := attr.Value(); !schema.Equal(want, value) {
				return nil, InvalidInput(opts.Path, value, kindName(attr))
			}
		}
		return value, nil
	})
}

func newAny(value any, opts Options) Stepper {
	return newMachine(opts, func(stage Stage, _ map[string]any) (any, error) {
		if stage == StageDefaulted {
			value = schema.Clone(value)
		}
		return value, nil
	})
}
