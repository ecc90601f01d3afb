package parse

import (
	"strconv"

	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

// Extension lets callers take over parsing of specific inputs, such as
// update operators. Returning false falls back to regular parsing.
// The returned Stepper must yield the stages of opts.Stages().
type Extension func(attr *schema.Frozen, input any, opts Options) (Stepper, bool)

type Options struct {
	// Mode selects defaults, links, validators and required rules. Defaults to put.
	Mode schema.Mode
	// Fill applies defaults and links. Defaults to true.
	Fill bool
	// Transform encodes values to their stored form. Defaults to true.
	Transform bool
	// Extension is consulted for every attribute value before regular parsing.
	Extension Extension
	// Defined requires a value even if the attribute is optional.
	Defined bool
	// Path is the value path of the attribute being parsed, e.g. "a.b[0]".
	Path string
}

type Option func(*Options)

func WithMode(m schema.Mode) Option {
	return func(o *Options) {
		o.Mode = m
	}
}

func WithFill(fill bool) Option {
	return func(o *Options) {
		o.Fill = fill
	}
}

func WithTransform(transform bool) Option {
	return func(o *Options) {
		o.Transform = transform
	}
}

func WithExtension(ext Extension) Option {
	return func(o *Options) {
		o.Extension = ext
	}
}

func WithDefined(defined bool) Option {
	return func(o *Options) {
		o.Defined = defined
	}
}

func NewOptions(opts ...Option) Options {
	o := Options{
		Mode:      schema.ModePut,
		Fill:      true,
		Transform: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Stages lists the stages a run with these options goes through.
func (o Options) Stages() []Stage {
	var stages []Stage
	if o.Fill {
		stages = append(stages, StageDefaulted, StageLinked)
	}
	stages = append(stages, StageParsed)
	if o.Transform {
		stages = append(stages, StageTransformed)
	}
	return stages
}

func (o Options) child(name string) Options {
	o.Defined = false
	if o.Path == "" {
		o.Path = name
	} else {
		o.Path = o.Path + "." + name
	}
	return o
}

func (o Options) element(i int) Options {
	o.Defined = true
	o.Path = o.Path + "[" + strconv.Itoa(i) + "]"
	return o
}
