// CLAUDE:SUMMARY Payload-type dispatch (exact or suffix name match) and the tolerant loader chain.
package verb

import (
	"context"
	"reflect"
	"strings"

	"github.com/hazyhaar/annexe/attach"
)

// kindOf returns the payload's concrete type name without pointer stars,
// e.g. "load.PDFDoc". An empty string means no payload.
func kindOf(payload any) string {
	if payload == nil {
		return ""
	}
	t := reflect.TypeOf(payload)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// kindMatches reports whether a payload satisfies a type key: exact match on
// the qualified name, or suffix match so "PDFDoc" hits "load.PDFDoc". The
// suffix rule is what lets plugins register handlers for payload types they
// do not import.
func kindMatches(payload any, key string) bool {
	if payload == nil || key == "" {
		return false
	}
	name := kindOf(payload)
	if name == key {
		return true
	}
	if strings.HasSuffix(name, key) {
		// Guard against partial-word hits: the char before the suffix must
		// be a package separator.
		rest := name[:len(name)-len(key)]
		return rest == "" || strings.HasSuffix(rest, ".")
	}
	return false
}

// dispatchTyped picks the first case matching the attachment's payload, in
// registration order, falling back to the untyped handler. With no match and
// no fallback the attachment passes through unchanged.
func dispatchTyped(ctx context.Context, a *attach.Attachment, cases []TypedCase, fallback Handler) (*attach.Attachment, bool, error) {
	for _, c := range cases {
		if kindMatches(a.Payload, c.Kind) {
			out, err := c.Fn(ctx, a)
			return out, true, err
		}
	}
	if fallback != nil {
		out, err := fallback(ctx, a)
		return out, true, err
	}
	return a, false, nil
}

// runLoader applies one loader with chain semantics: pass through when the
// payload is already claimed or the matcher declines; propagate decode errors
// so fallback pipelines can take over.
func runLoader(ctx context.Context, e loaderEntry, a *attach.Attachment) (any, error) {
	if a.HasPayload() {
		return a, nil
	}
	if e.match != nil && !e.match(a) {
		return a, nil
	}
	out, err := e.fn(ctx, a)
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case *attach.Attachment:
		v.Traced(e.name)
	case *attach.Set:
		for _, item := range v.Items {
			item.Traced(e.name)
		}
	}
	return out, nil
}

// LoaderNames returns the registered loader names in dispatch order.
func LoaderNames() []string {
	names := make([]string, len(loaders))
	for i, e := range loaders {
		names[i] = e.name
	}
	return names
}
