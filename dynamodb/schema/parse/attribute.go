package parse

import "github.com/acksell/ddbtoolbox/dynamodb/schema"

// NewRun starts parsing input against attr, consulting opts.Extension first.
func NewRun(attr *schema.Frozen, input any, opts Options) Stepper {
	if opts.Extension != nil && !attr.IsRoot() {
		if s, ok := opts.Extension(attr, input, opts); ok {
			return s
		}
	}
	return newAttrRun(attr, input, opts)
}

// attrRun handles what every attribute shares: defaults, links, required
// checks and custom validation. The variant specific work is done by body,
// which only exists once there is a value.
type attrRun struct {
	attr *schema.Frozen
	opts Options
	body Stepper
	// extended is set when the extension took over a default or link value.
	extended bool
}

func newAttrRun(attr *schema.Frozen, input any, opts Options) *Run {
	r := &attrRun{attr: attr, opts: opts}
	if input != nil || attr.IsRoot() {
		r.body = newBody(attr, input, opts)
	}
	return newMachine(opts, r.step)
}

func (r *attrRun) step(stage Stage, item map[string]any) (any, error) {
	mode := r.opts.Mode
	switch stage {
	case StageDefaulted:
		if r.body == nil {
			if v, ok := r.attr.Default(mode); ok {
				r.body = r.resolved(v)
			}
		}
	case StageLinked:
		if r.body == nil {
			if link := r.attr.Link(mode); link != nil {
				if v := link(item); v != nil {
					r.body = r.resolved(v)
					if _, err := r.body.Next(item); err != nil {
						return nil, err
					}
				}
			}
		}
	case StageParsed:
		if r.body == nil {
			if r.opts.Defined || r.attr.RequiredIn(mode) {
				return nil, missingAttribute(r.opts.Path)
			}
			return nil, nil
		}
		step, err := r.body.Next(item)
		if err != nil {
			return nil, err
		}
		if validate := r.attr.Validator(mode); validate != nil && step.Value != nil && !r.extended {
			if err := validate(step.Value); err != nil {
				return nil, customValidation(r.opts.Path, step.Value, err)
			}
		}
		return step.Value, nil
	}
	if r.body == nil {
		return nil, nil
	}
	step, err := r.body.Next(item)
	if err != nil {
		return nil, err
	}
	return step.Value, nil
}

// resolved starts the body for a value supplied by a default or a link.
// Those may be extension inputs too, e.g. an update operator default.
func (r *attrRun) resolved(v any) Stepper {
	if r.opts.Extension != nil && !r.attr.IsRoot() {
		if s, ok := r.opts.Extension(r.attr, v, r.opts); ok {
			r.extended = true
			return s
		}
	}
	return newBody(r.attr, v, r.opts)
}

func newBody(attr *schema.Frozen, value any, opts Options) Stepper {
	switch attr.Kind() {
	case schema.KindString, schema.KindNumber, schema.KindBoolean, schema.KindBinary:
		return newPrimitive(attr, value, opts)
	case schema.KindConstant:
		return newConstant(attr, value, opts)
	case schema.KindList, schema.KindSet:
		return newList(attr, value, opts)
	case schema.KindMap:
		return newMap(attr, value, opts)
	case schema.KindRecord:
		return newRecord(attr, value, opts)
	case schema.KindAnyOf:
		return newAnyOf(attr, value, opts)
	default:
		return newAny(value, opts)
	}
}
