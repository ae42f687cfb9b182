// CLAUDE:SUMMARY Refiner verbs — truncate, add_headers, merge_text, tile_images, resize_images.
// Package refine implements post-presentation refiners. merge_text,
// tile_images, and combine_images are reducers: fed a set they emit one
// attachment. The rest map elementwise.
package refine

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/verb"
)

func init() {
	verb.RegisterRefiner("truncate", truncateText)
	verb.RegisterRefiner("add_headers", addHeaders)
	verb.RegisterRefiner("merge_text", mergeText)
	verb.RegisterRefiner("tile_images", tileImages)
	verb.RegisterRefiner("combine_images", tileImages)
	verb.RegisterRefiner("resize_images", resizeImages)
}

// defaultTruncate applies when the command carries no usable budget.
const defaultTruncate = 3000

func truncateText(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	budget := a.Commands.Int("truncate", defaultTruncate)
	if budget <= 0 {
		budget = defaultTruncate
	}
	runes := []rune(a.Text)
	if len(runes) <= budget {
		return a, nil
	}
	original := len(runes)
	a.Text = string(runes[:budget]) + "\n… (truncated)"
	a.Record("processing", map[string]any{
		"operation":        "truncate",
		"original_length":  original,
		"truncated_length": budget,
	})
	return a, nil
}

// addHeaders prepends a path heading when the text has none, so folded
// collections stay navigable.
func addHeaders(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	if a.Path == "" || strings.HasPrefix(strings.TrimSpace(a.Text), "#") {
		return a, nil
	}
	a.Text = fmt.Sprintf("# %s\n\n%s", a.Path, a.Text)
	return a, nil
}

// mergeText folds a set into one attachment.
func mergeText(_ context.Context, in any) (any, error) {
	set, ok := in.(*attach.Set)
	if !ok {
		return in, nil
	}
	folded := set.Fold()
	folded.Record("operation", "merge_text")
	return folded, nil
}
