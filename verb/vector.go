// CLAUDE:SUMMARY Vectorization — map verbs elementwise over a Set, reducers see the whole set.
package verb

import (
	"context"

	"github.com/hazyhaar/annexe/attach"
)

// reducerNames are refiners that consume a whole set and emit one
// attachment. Adapters are always reducers.
var reducerNames = map[string]struct{}{
	"tile_images":    {},
	"combine_images": {},
	"merge_text":     {},
}

// isReducer classifies a step. Additive groups and nested pipelines map.
func isReducer(s Step) bool {
	v, ok := s.(*VerbFunc)
	if !ok {
		return false
	}
	if v.kind == kindAdapter {
		return true
	}
	if v.kind == kindRefiner {
		_, reduces := reducerNames[v.name]
		return reduces
	}
	return false
}

// mapOverSet applies a step to every attachment independently, preserving
// order. Results that are themselves sets are flattened into the output.
func mapOverSet(ctx context.Context, s Step, set *attach.Set) (any, error) {
	out := attach.NewSet()
	for _, item := range set.Items {
		res, err := s.Run(ctx, item)
		if err != nil {
			return nil, err
		}
		switch t := res.(type) {
		case *attach.Attachment:
			out.Append(t)
		case *attach.Set:
			out.Append(t.Items...)
		default:
			// A non-attachment result inside a map is unexpected; keep the
			// original element so cardinality holds.
			out.Append(item)
		}
	}
	return out, nil
}

// FoldIfSet collapses a set into one attachment; attachments pass through.
// Adapters use this before shaping provider messages.
func FoldIfSet(in any) *attach.Attachment {
	switch t := in.(type) {
	case *attach.Attachment:
		return t
	case *attach.Set:
		return t.Fold()
	default:
		return nil
	}
}

// SetOf normalizes an input into a set, wrapping a lone attachment.
func SetOf(in any) *attach.Set {
	switch t := in.(type) {
	case *attach.Set:
		return t
	case *attach.Attachment:
		return attach.NewSet(t)
	default:
		return attach.NewSet()
	}
}

// runSet vectorizes a single verb over a set.
func (v *VerbFunc) runSet(ctx context.Context, set *attach.Set) (any, error) {
	if v.bound != nil {
		for _, item := range set.Items {
			item.Commands[v.name] = *v.bound
		}
	}
	if isReducer(v) {
		switch v.kind {
		case kindAdapter:
			return v.runAdapter(ctx, set)
		default:
			return v.runRefiner(ctx, set)
		}
	}
	if v.kind == kindRefiner {
		// Map-class refiners still take the elements one by one.
		out := attach.NewSet()
		for _, item := range set.Items {
			res, err := v.runRefiner(ctx, item)
			if err != nil {
				return nil, err
			}
			switch t := res.(type) {
			case *attach.Attachment:
				out.Append(t)
			case *attach.Set:
				out.Append(t.Items...)
			}
		}
		return out, nil
	}
	out := attach.NewSet()
	for _, item := range set.Items {
		res, err := v.runOne(ctx, item)
		if err != nil {
			return nil, err
		}
		switch t := res.(type) {
		case *attach.Attachment:
			out.Append(t)
		case *attach.Set:
			out.Append(t.Items...)
		}
	}
	return out, nil
}
