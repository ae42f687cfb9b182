// CLAUDE:SUMMARY VerbFunc — namespace handles with partial application; the callable unit of pipelines.
package verb

import (
	"context"
	"fmt"

	"github.com/hazyhaar/annexe/attach"
)

type verbKind int

const (
	kindLoader verbKind = iota
	kindModifier
	kindPresenter
	kindRefiner
	kindAdapter
)

func (k verbKind) String() string {
	switch k {
	case kindLoader:
		return "load"
	case kindModifier:
		return "modify"
	case kindPresenter:
		return "present"
	case kindRefiner:
		return "refine"
	default:
		return "adapt"
	}
}

// VerbFunc is a reference to a registered verb, optionally carrying a bound
// command value or adapter arguments. It resolves by name at run time, so
// pipelines can be declared before every feature package has registered.
type VerbFunc struct {
	kind  verbKind
	name  string
	bound *string
	args  []string
}

// Load references a loader verb.
func Load(name string) *VerbFunc { return &VerbFunc{kind: kindLoader, name: name} }

// Modify references a modifier verb.
func Modify(name string) *VerbFunc { return &VerbFunc{kind: kindModifier, name: name} }

// Present references a presenter verb.
func Present(name string) *VerbFunc { return &VerbFunc{kind: kindPresenter, name: name} }

// Refine references a refiner verb.
func Refine(name string) *VerbFunc { return &VerbFunc{kind: kindRefiner, name: name} }

// Adapt references an adapter verb with optional extra arguments.
func Adapt(name string, args ...string) *VerbFunc {
	return &VerbFunc{kind: kindAdapter, name: name, args: args}
}

// With partially applies the verb: when the verb later runs, the value is
// written into the attachment's commands under the verb's own name. This is
// how Modify("resize").With("50%") spells [resize:50%].
func (v *VerbFunc) With(value string) *VerbFunc {
	c := *v
	c.bound = &value
	return &c
}

// Name returns the verb's registered name.
func (v *VerbFunc) Name() string { return v.name }

// Then composes this verb with a following step into a sequential pipeline.
func (v *VerbFunc) Then(next Step) *Pipeline {
	return NewPipeline(v).Then(next)
}

// Also composes this verb with another step additively: both run on the same
// attachment, each appending its own output. Additive groups compose into a
// single Then step, so Also always binds tighter than Then.
func (v *VerbFunc) Also(other Step) *Additive {
	return &Additive{steps: []Step{v, other}}
}

// Run applies the verb to a string, attachment, or set. Strings construct an
// attachment first. Sets vectorize per the verb's map/reduce class.
func (v *VerbFunc) Run(ctx context.Context, in any) (any, error) {
	switch t := in.(type) {
	case string:
		return v.Run(ctx, attach.New(t))
	case *attach.Set:
		return v.runSet(ctx, t)
	case *attach.Attachment:
		return v.runOne(ctx, t)
	default:
		return nil, fmt.Errorf("verb %s.%s: unsupported input %T", v.kind, v.name, in)
	}
}

func (v *VerbFunc) runOne(ctx context.Context, a *attach.Attachment) (any, error) {
	if v.bound != nil {
		a.Commands[v.name] = *v.bound
	}
	switch v.kind {
	case kindLoader:
		for _, e := range loaders {
			if e.name == v.name {
				return runLoader(ctx, e, a)
			}
		}
		return nil, fmt.Errorf("load.%s: not registered", v.name)

	case kindModifier:
		e, ok := modifiers[v.name]
		if !ok {
			return nil, fmt.Errorf("modify.%s: not registered", v.name)
		}
		out, ran, err := dispatchTyped(ctx, a, e.cases, e.fallback)
		if err != nil {
			return nil, err
		}
		if ran {
			out.Traced(v.name)
		}
		return out, nil

	case kindPresenter:
		e, ok := presenters[v.name]
		if !ok {
			return nil, fmt.Errorf("present.%s: not registered", v.name)
		}
		if !gateAllows(e, a) {
			return a, nil
		}
		out, ran, err := dispatchTyped(ctx, a, e.cases, e.fallback)
		if err != nil {
			// Presenter failures degrade: record and continue unchanged.
			a.RecordError(v.name, err)
			return a, nil
		}
		if ran {
			out.Traced(v.name)
		}
		return out, nil

	case kindRefiner:
		return v.runRefiner(ctx, a)

	default: // adapter
		return v.runAdapter(ctx, a)
	}
}

func (v *VerbFunc) runRefiner(ctx context.Context, in any) (any, error) {
	e, ok := refiners[v.name]
	if !ok {
		return nil, fmt.Errorf("refine.%s: not registered", v.name)
	}
	out, err := e.fn(ctx, in)
	if err != nil {
		// Refiners degrade like presenters.
		if a, isAtt := in.(*attach.Attachment); isAtt {
			a.RecordError(v.name, err)
			return a, nil
		}
		if s, isSet := in.(*attach.Set); isSet {
			for _, item := range s.Items {
				item.RecordError(v.name, err)
			}
			return s, nil
		}
		return nil, err
	}
	switch t := out.(type) {
	case *attach.Attachment:
		t.Traced(v.name)
	case *attach.Set:
		for _, item := range t.Items {
			item.Traced(v.name)
		}
	}
	return out, nil
}

func (v *VerbFunc) runAdapter(ctx context.Context, in any) (any, error) {
	e, ok := adapters[v.name]
	if !ok {
		return nil, fmt.Errorf("adapt.%s: not registered", v.name)
	}
	// Adapters do not catch: malformed input here is a caller bug.
	return e.fn(ctx, in, v.args...)
}
