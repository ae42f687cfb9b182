// CLAUDE:SUMMARY Universal fallback pipeline — tolerant loader chain, smart presenting, bounded output.
package proc

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
	"github.com/hazyhaar/annexe/verb"
)

// universalChainOrder is the loader order of the tolerant chain. Loaders
// that decline pass through; the first that claims the payload wins.
var universalChainOrder = []string{
	"repo", "pdf", "docx", "pptx", "xlsx", "csv", "image", "html", "url", "text", "archive",
}

// truncateThreshold triggers the closing truncation; truncateBudget is what
// survives.
const (
	truncateThreshold = 5000
	truncateBudget    = 3000
)

// Universal builds the fallback pipeline used when no primary processor
// matches an input.
func Universal() *verb.Pipeline {
	steps := make([]verb.Step, 0, len(universalChainOrder)+2)
	for _, name := range universalChainOrder {
		steps = append(steps, verb.Load(name))
	}
	steps = append(steps, bestEffortStep{}, universalPresentStep{})
	return verb.NewPipeline(steps...)
}

// bestEffortStep catches inputs no loader claimed: it tries a raw text read
// and otherwise leaves a readable explanation in the text buffer.
type bestEffortStep struct{}

func (bestEffortStep) Name() string { return "best_effort" }

func (bestEffortStep) Run(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	if a.HasPayload() {
		return a, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		a.AppendText(fmt.Sprintf("Could not read %s: %v\n", a.Path, err))
		a.RecordError("load", err)
		return a, nil
	}
	a.SetPayload(&load.TextBlob{Content: string(data)})
	a.Record("file_size", len(data))
	return a, nil
}

// universalPresentStep is the tail of the fallback: the mode branch for
// directory structures, otherwise smart text plus images plus metadata,
// headers, and a truncation pass for oversized output.
type universalPresentStep struct{}

func (universalPresentStep) Name() string { return "universal_present" }

func (universalPresentStep) Run(ctx context.Context, in any) (any, error) {
	set, isSet := in.(*attach.Set)
	if isSet {
		out := attach.NewSet()
		for _, item := range set.Items {
			res, err := universalPresentOne(ctx, item)
			if err != nil {
				return nil, err
			}
			out.Append(res)
		}
		return out, nil
	}
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	return universalPresentOne(ctx, a)
}

func universalPresentOne(ctx context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	if _, isDir := a.Payload.(*load.DirStructure); isDir {
		out, err := (modeStep{}).Run(ctx, a)
		if err != nil {
			return nil, err
		}
		if res, ok := out.(*attach.Attachment); ok {
			return res, nil
		}
		return a, nil
	}

	additive := verb.Present("markdown").
		Also(verb.Present("text")).
		Also(verb.Present("images")).
		Also(verb.Present("metadata"))
	out, err := additive.Run(ctx, a)
	if err != nil {
		return nil, err
	}
	res, ok := out.(*attach.Attachment)
	if !ok {
		return a, nil
	}

	if _, err := verb.Refine("add_headers").Run(ctx, res); err != nil {
		return nil, err
	}
	if len([]rune(res.Text)) > truncateThreshold {
		if res.Commands.Get("truncate") == "" {
			res.Commands["truncate"] = strconv.Itoa(truncateBudget)
		}
		if _, err := verb.Refine("truncate").Run(ctx, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}
