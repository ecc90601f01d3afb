package parse

import (
	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

type anyOfCandidate struct {
	run Stepper
	err error
}

// newAnyOf runs every candidate through the same stages as the anyOf itself.
// While filling, the value of the first candidate still going is yielded.
// At the parsed stage the first candidate without a parsing error wins and
// also transforms the value.
func newAnyOf(attr *schema.Frozen, value any, opts Options) Stepper {
	candidateOpts := opts
	candidateOpts.Defined = true

	candidates := attr.Candidates()
	runs := make([]*anyOfCandidate, len(candidates))
	for i, c := range candidates {
		runs[i] = &anyOfCandidate{run: NewRun(c, value, candidateOpts)}
	}

	var winner Stepper
	return newMachine(opts, func(stage Stage, item map[string]any) (any, error) {
		switch stage {
		case StageDefaulted, StageLinked:
			var (
				out   any
				found bool
			)
			for _, c := range runs {
				if c.err != nil {
					continue
				}
				step, err := c.run.Next(item)
				if err != nil {
					c.err = err
					continue
				}
				if !found {
					out, found = step.Value, true
				}
			}
			if !found {
				return schema.Clone(value), nil
			}
			return out, nil
		case StageParsed:
			for _, c := range runs {
				if c.err == nil {
					step, err := c.run.Next(item)
					if err == nil {
						winner = c.run
						return step.Value, nil
					}
					c.err = err
				}
				if !ddberr.Match(c.err, "parsing.") {
					return nil, c.err
				}
			}
			kinds := make([]string, len(candidates))
			for i, c := range candidates {
				kinds[i] = string(c.Kind())
			}
			return nil, ddberr.New(ddberr.ParsingInvalidAttributeInput,
				describe(opts.Path)+" does not match any of the possible sub-types.",
				ddberr.WithPath(opts.Path),
				ddberr.WithPayload(map[string]any{"received": value, "expected": kinds}),
			)
		default:
			step, err := winner.Next(item)
			if err != nil {
				return nil, err
			}
			return step.Value, nil
		}
	})
}
