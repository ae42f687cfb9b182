// CLAUDE:SUMMARY Conditional pipeline steps — command gates and the directory mode branch.
package proc

import (
	"context"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/verb"
)

// condStep runs its inner step only when the condition holds for the
// attachment. For a set, the first item's condition decides and the inner
// step receives the whole set.
type condStep struct {
	name  string
	cond  func(*attach.Attachment) bool
	inner verb.Step
}

func (c condStep) Name() string { return c.name }

func (c condStep) Run(ctx context.Context, in any) (any, error) {
	switch t := in.(type) {
	case *attach.Attachment:
		if c.cond(t) {
			return c.inner.Run(ctx, t)
		}
		return t, nil
	case *attach.Set:
		if t.Len() > 0 && c.cond(t.Items[0]) {
			return c.inner.Run(ctx, t)
		}
		return t, nil
	default:
		return in, nil
	}
}

// whenCommand gates a step on the presence of a DSL command.
func whenCommand(key string, inner verb.Step) verb.Step {
	return condStep{
		name: "when[" + key + "]:" + inner.Name(),
		cond: func(a *attach.Attachment) bool { return a.Commands.Get(key) != "" },
		inner: inner,
	}
}

// whenFormat gates a step on the canonical format command.
func whenFormat(format string, inner verb.Step) verb.Step {
	return condStep{
		name: "when[format=" + format + "]:" + inner.Name(),
		cond: func(a *attach.Attachment) bool { return a.Commands.Format() == format },
		inner: inner,
	}
}

// modeStep branches a directory attachment on the mode command:
// structure, metadata, or files (the default).
type modeStep struct{}

func (modeStep) Name() string { return "mode" }

func (modeStep) Run(ctx context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	switch a.Commands.GetOr("mode", "files") {
	case "structure":
		return verb.Present("structure").Run(ctx, a)
	case "metadata":
		return verb.Present("metadata").Run(ctx, a)
	default:
		return verb.Present("files").Run(ctx, a)
	}
}
