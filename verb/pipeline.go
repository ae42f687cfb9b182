// CLAUDE:SUMMARY Pipeline algebra — Then (sequential, short-circuit), Also (additive), Or (fallback).
package verb

import (
	"context"
	"fmt"

	"github.com/hazyhaar/annexe/attach"
)

// Step is anything a pipeline can execute: a VerbFunc, an Additive group, or
// a nested Pipeline.
type Step interface {
	Run(ctx context.Context, in any) (any, error)
	Name() string
}

// Pipeline is a lazy sequential composition of steps, with optional fallback
// pipelines tried in order when a step fails.
type Pipeline struct {
	steps     []Step
	fallbacks []*Pipeline
}

// NewPipeline builds a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Then appends a step, returning a new pipeline value.
func (p *Pipeline) Then(s Step) *Pipeline {
	steps := make([]Step, 0, len(p.steps)+1)
	steps = append(steps, p.steps...)
	steps = append(steps, s)
	return &Pipeline{steps: steps, fallbacks: p.fallbacks}
}

// Or registers a complete pipeline to try when this one fails.
func (p *Pipeline) Or(fb *Pipeline) *Pipeline {
	out := &Pipeline{steps: p.steps}
	out.fallbacks = append(append(out.fallbacks, p.fallbacks...), fb)
	return out
}

// Name summarizes the composition for traces and errors.
func (p *Pipeline) Name() string {
	if len(p.steps) == 0 {
		return "pipeline()"
	}
	name := "pipeline(" + p.steps[0].Name()
	if len(p.steps) > 1 {
		name += fmt.Sprintf("+%d", len(p.steps)-1)
	}
	return name + ")"
}

// Run feeds the input through every step in order. A string input constructs
// an attachment first. A step result that is neither an attachment nor a set
// (an adapter's output) short-circuits the pipeline and is returned verbatim.
// When any step fails, fallback pipelines receive the original input.
func (p *Pipeline) Run(ctx context.Context, in any) (any, error) {
	if s, ok := in.(string); ok {
		in = attach.New(s)
	}
	out, err := p.runSteps(ctx, in)
	if err == nil {
		return out, nil
	}
	for _, fb := range p.fallbacks {
		out, fbErr := fb.Run(ctx, in)
		if fbErr == nil {
			return out, nil
		}
		err = fbErr
	}
	return nil, err
}

func (p *Pipeline) runSteps(ctx context.Context, in any) (any, error) {
	cur := in
	for _, s := range p.steps {
		switch cur.(type) {
		case *attach.Attachment, *attach.Set:
			// still a pipeline value; keep going
		default:
			// adapter output: hand it back untouched
			return cur, nil
		}
		next, err := runStep(ctx, s, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// runStep executes one step, vectorizing over sets for map-class verbs.
func runStep(ctx context.Context, s Step, in any) (any, error) {
	set, isSet := in.(*attach.Set)
	if !isSet || isReducer(s) {
		return s.Run(ctx, in)
	}
	return mapOverSet(ctx, s, set)
}

// Additive runs every step against the same attachment; each appends its own
// text or images. Over a set it applies elementwise.
type Additive struct {
	steps []Step
}

// Also appends another step to the additive group.
func (a *Additive) Also(s Step) *Additive {
	steps := make([]Step, 0, len(a.steps)+1)
	steps = append(steps, a.steps...)
	steps = append(steps, s)
	return &Additive{steps: steps}
}

// Then starts a sequential pipeline with this additive group as its head.
func (a *Additive) Then(s Step) *Pipeline {
	return NewPipeline(a).Then(s)
}

// Name lists the grouped steps.
func (a *Additive) Name() string {
	name := "also("
	for i, s := range a.steps {
		if i > 0 {
			name += "+"
		}
		name += s.Name()
	}
	return name + ")"
}

// Run applies every step to the same attachment in order.
func (a *Additive) Run(ctx context.Context, in any) (any, error) {
	if s, ok := in.(string); ok {
		in = attach.New(s)
	}
	if set, isSet := in.(*attach.Set); isSet {
		return mapOverSet(ctx, a, set)
	}
	att, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	for _, s := range a.steps {
		out, err := s.Run(ctx, att)
		if err != nil {
			return nil, err
		}
		if next, isAtt := out.(*attach.Attachment); isAtt {
			att = next
		}
	}
	return att, nil
}
