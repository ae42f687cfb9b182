// CLAUDE:SUMMARY Ordered Attachment collection with fold-to-one semantics.
package attach

import (
	"strings"

	"github.com/samber/lo"
)

// Set is an ordered collection of attachments, produced by archive expansion,
// directory expansion, splits, or multi-path construction. It carries no state
// beyond the sequence.
type Set struct {
	Items []*Attachment
}

// NewSet wraps attachments into a set, preserving order.
func NewSet(items ...*Attachment) *Set {
	return &Set{Items: items}
}

// Len returns the number of attachments.
func (s *Set) Len() int { return len(s.Items) }

// Append adds attachments to the end of the set.
func (s *Set) Append(items ...*Attachment) {
	s.Items = append(s.Items, items...)
}

// Paths returns the path of every attachment, in order.
func (s *Set) Paths() []string {
	return lo.Map(s.Items, func(a *Attachment, _ int) string { return a.Path })
}

// Fold collapses the set into a single attachment: texts joined by a blank
// line, images concatenated, metadata describing the collection. The folded
// attachment has an empty path.
func (s *Set) Fold() *Attachment {
	out := &Attachment{
		Commands: make(Commands),
		Metadata: make(map[string]any),
	}
	if len(s.Items) > 0 {
		out.Commands = s.Items[0].Commands.Clone()
	}
	texts := make([]string, 0, len(s.Items))
	for _, a := range s.Items {
		if a.Text != "" {
			texts = append(texts, a.Text)
		}
		out.Images = append(out.Images, a.Images...)
		out.Audio = append(out.Audio, a.Audio...)
	}
	out.Text = strings.Join(texts, "\n\n")
	out.Record("collection_size", len(s.Items))
	out.Record("combined_from", s.Paths())
	return out
}

// Close closes every attachment in the set. Idempotent per element.
func (s *Set) Close() error {
	for _, a := range s.Items {
		_ = a.Close()
	}
	return nil
}

// String summarizes the set without dumping buffers.
func (s *Set) String() string {
	var sb strings.Builder
	sb.WriteString("Set[")
	for i, a := range s.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString("]")
	return sb.String()
}
