package parse

// Stage is a suspension point of a run.
type Stage int

const (
	// StageDefaulted holds the input with defaults applied.
	StageDefaulted Stage = iota + 1
	// StageLinked holds the value with links resolved against the item.
	StageLinked
	// StageParsed holds the validated value.
	StageParsed
	// StageTransformed holds the value as it is sent to storage.
	StageTransformed
)

func (s Stage) String() string {
	switch s {
	case StageDefaulted:
		return "defaulted"
	case StageLinked:
		return "linked"
	case StageParsed:
		return "parsed"
	case StageTransformed:
		return "transformed"
	}
	return "unknown"
}

// Step is the value produced by one stage. Done is set on the last one.
type Step struct {
	Stage Stage
	Value any
	Done  bool
}

// Stepper advances a value one stage per call. item is the full input item,
// read by links at the linked stage and ignored otherwise.
type Stepper interface {
	Next(item map[string]any) (Step, error)
}

// Run is the state machine behind every Stepper of this package.
// Once done, Next keeps returning the final step. Once failed, Next keeps
// returning the error.
type Run struct {
	stages []Stage
	pos    int
	last   Step
	err    error
	step   func(stage Stage, item map[string]any) (any, error)
}

var _ Stepper = &Run{}

func newMachine(opts Options, step func(Stage, map[string]any) (any, error)) *Run {
	return &Run{stages: opts.Stages(), step: step}
}

func (r *Run) Next(item map[string]any) (Step, error) {
	if r.err != nil {
		return Step{}, r.err
	}
	if r.pos >= len(r.stages) {
		return r.last, nil
	}
	stage := r.stages[r.pos]
	v, err := r.step(stage, item)
	if err != nil {
		r.err = err
		return Step{Stage: stage}, err
	}
	r.pos++
	r.last = Step{Stage: stage, Value: v, Done: r.pos == len(r.stages)}
	return r.last, nil
}

// Stage returns the stage the next call to Next produces, or 0 when done.
func (r *Run) Stage() Stage {
	if r.pos >= len(r.stages) {
		return 0
	}
	return r.stages[r.pos]
}

// Finish drives the run to its final value. The linked stage receives the
// defaulted value as item.
func (r *Run) Finish() (any, error) {
	return finish(r)
}

func finish(s Stepper) (any, error) {
	var item map[string]any
	for {
		step, err := s.Next(item)
		if err != nil {
			return nil, err
		}
		if step.Done {
			return step.Value, nil
		}
		if step.Stage == StageDefaulted {
			item, _ = step.Value.(map[string]any)
		}
	}
}

// Static yields value at every stage.
func Static(value any, opts Options) Stepper {
	return newMachine(opts, func(Stage, map[string]any) (any, error) {
		return value, nil
	})
}

// Fail returns a Stepper failing with err on its first step.
func Fail(err error) Stepper {
	return &Run{err: err}
}

// Wrap applies fn to every value inner yields.
func Wrap(inner Stepper, fn func(stage Stage, value any) any) Stepper {
	return wrapped{inner: inner, fn: fn}
}

type wrapped struct {
	inner Stepper
	fn    func(Stage, any) any
}

func (w wrapped) Next(item map[string]any) (Step, error) {
	step, err := w.inner.Next(item)
	if err != nil {
		return step, err
	}
	step.Value = w.fn(step.Stage, step.Value)
	return step, nil
}
