// CLAUDE:SUMMARY High-level facade — Attachments construction, per-input error isolation, directory expansion.
// Package annexe turns heterogeneous inputs — documents, spreadsheets,
// presentations, images, archives, URLs, directories — into LLM-ready
// prompt text, base64 PNG images, and structured metadata.
//
// The one-call surface:
//
//	atts, _ := annexe.Attachments(ctx, "report.pdf[pages:1-3]", "https://example.com[select:h1]")
//	msgs, _ := atts.Claude("summarize these")
//
// Inputs carry [key:value] commands that steer extraction (pages, format,
// images, select, …); the parser lives in the attach package. Every input
// is isolated: a failing one yields a readable error attachment instead of
// sinking the batch.
package annexe

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
	"github.com/hazyhaar/annexe/proc"
	"github.com/hazyhaar/annexe/verb"
)

var freezeOnce sync.Once

// freeze arms the registries exactly once, before the first pipeline runs.
func freeze() {
	freezeOnce.Do(verb.Freeze)
}

// Result is an ordered collection of processed attachments with adapter
// conveniences.
type Result struct {
	*attach.Set
}

// Attachments processes every input through processor discovery (or the
// universal fallback) and collects the results in input order. A failing
// input produces an error attachment; the construction itself fails only
// when called with no inputs.
func Attachments(ctx context.Context, inputs ...string) (*Result, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("annexe: no inputs")
	}
	freeze()

	out := attach.NewSet()
	for _, input := range inputs {
		collect(ctx, out, input)
	}
	return &Result{Set: out}, nil
}

// Process runs a single input and returns the raw pipeline value: an
// attachment, a set, or an adapter result.
func Process(ctx context.Context, input string) (any, error) {
	freeze()
	return proc.Run(ctx, input)
}

// ProcessNamed runs a named processor explicitly.
func ProcessNamed(ctx context.Context, name, input string) (any, error) {
	freeze()
	return proc.RunNamed(ctx, name, input)
}

func collect(ctx context.Context, out *attach.Set, input string) {
	res, err := proc.Run(ctx, input)
	if err != nil {
		out.Append(errorAttachment(input, err))
		return
	}
	switch t := res.(type) {
	case *attach.Attachment:
		if expanded := expandDirectoryMap(ctx, t); expanded != nil {
			out.Append(expanded...)
			return
		}
		out.Append(t)
	case *attach.Set:
		out.Append(t.Items...)
	default:
		out.Append(errorAttachment(input, fmt.Errorf("unexpected pipeline result %T", res)))
	}
}

// errorAttachment is the per-input failure artifact.
func errorAttachment(input string, err error) *attach.Attachment {
	a := attach.New(input)
	a.AppendText(fmt.Sprintf("⚠️ Could not process %s: %v\n", a.Path, err))
	a.Record("error", err.Error())
	a.Record("path", a.Path)
	return a
}

// expandDirectoryMap turns a files-mode directory attachment into one
// attachment per collected file, commands inherited. Returns nil when the
// attachment is not a directory map.
func expandDirectoryMap(ctx context.Context, a *attach.Attachment) []*attach.Attachment {
	marked, _ := a.Metadata["directory_map"].(bool)
	ds, isDir := a.Payload.(*load.DirStructure)
	if !marked || !isDir {
		return nil
	}
	cmds := a.Commands.Clone()
	delete(cmds, "mode")
	var out []*attach.Attachment
	for _, rel := range ds.Files {
		input := filepath.Join(ds.Path, rel) + cmds.String()
		res, err := proc.Run(ctx, input)
		if err != nil {
			out = append(out, errorAttachment(input, err))
			continue
		}
		switch t := res.(type) {
		case *attach.Attachment:
			out = append(out, t)
		case *attach.Set:
			out = append(out, t.Items...)
		}
	}
	_ = a.Close()
	return out
}

// Text folds every attachment's text, blank-line separated.
func (r *Result) Text() string {
	folded := r.Set.Fold()
	defer folded.Close()
	return folded.Text
}

// Images concatenates every attachment's images in order.
func (r *Result) Images() []string {
	var out []string
	for _, a := range r.Set.Items {
		out = append(out, a.Images...)
	}
	return out
}

// Claude folds the collection into Anthropic message params. An optional
// prompt overrides the prompt command.
func (r *Result) Claude(prompt ...string) ([]anthropic.MessageParam, error) {
	out, err := verb.Adapt("claude", prompt...).Run(context.Background(), r.Set)
	if err != nil {
		return nil, err
	}
	return out.([]anthropic.MessageParam), nil
}

// OpenAIChat folds the collection into Chat Completions message params.
func (r *Result) OpenAIChat(prompt ...string) ([]openai.ChatCompletionMessageParamUnion, error) {
	out, err := verb.Adapt("openai_chat", prompt...).Run(context.Background(), r.Set)
	if err != nil {
		return nil, err
	}
	return out.([]openai.ChatCompletionMessageParamUnion), nil
}

// Messages folds the collection into the provider-neutral map shape.
func (r *Result) Messages(prompt ...string) ([]map[string]any, error) {
	out, err := verb.Adapt("messages", prompt...).Run(context.Background(), r.Set)
	if err != nil {
		return nil, err
	}
	return out.([]map[string]any), nil
}

// Close releases every attachment's resources.
func (r *Result) Close() error {
	return r.Set.Close()
}
