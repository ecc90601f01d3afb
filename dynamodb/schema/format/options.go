package format

import "strings"

type Options struct {
	// Transform decodes stored values. Defaults to true.
	Transform bool
	// Attributes limits the output to these attribute paths, e.g. "address.city".
	Attributes []string
	// Partial tolerates missing required attributes.
	Partial bool
}

type Option func(*Options)

func WithTransform(transform bool) Option {
	return func(o *Options) {
		o.Transform = transform
	}
}

// WithAttributes projects the formatted item on the given attribute paths.
func WithAttributes(paths ...string) Option {
	return func(o *Options) {
		o.Attributes = append(o.Attributes, paths...)
	}
}

func WithPartial(partial bool) Option {
	return func(o *Options) {
		o.Partial = partial
	}
}

func NewOptions(opts ...Option) Options {
	o := Options{Transform: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// projection is a tree of selected attribute names. A nil projection
// selects everything below it.
type projection map[string]projection

func newProjection(paths []string) projection {
	if len(paths) == 0 {
		return nil
	}
	root := projection{}
	for _, path := range paths {
		node := root
		parts := strings.Split(path, ".")
		for i, part := range parts {
			child, seen := node[part]
			if seen && child == nil {
				// an ancestor is already fully selected
				break
			}
			if i == len(parts)-1 {
				node[part] = nil
				break
			}
			if child == nil {
				child = projection{}
				node[part] = child
			}
			node = child
		}
	}
	return root
}

// selects reports whether name is kept, and the projection below it.
func (p projection) selects(name string) (bool, projection) {
	if p == nil {
		return true, nil
	}
	child, ok := p[name]
	return ok, child
}
