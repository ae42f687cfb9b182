// CLAUDE:SUMMARY Five process-wide verb registries (load, modify, present, refine, adapt) with an init-freeze barrier.
// Package verb implements the processing-graph runtime: typed verb
// registries, payload-type dispatch, pipeline composition, vectorization
// over attachment sets, the presenter gate, and processor discovery.
//
// Registries are populated by feature packages at init time, frozen once by
// the facade, and read-only afterwards. That is the only process-wide state;
// attachments share nothing, so independent pipelines are safe to run in
// parallel.
package verb

import (
	"context"
	"fmt"
	"sync"

	"github.com/hazyhaar/annexe/attach"
)

// Matcher decides whether a loader accepts an attachment, typically from the
// path suffix or URL scheme.
type Matcher func(*attach.Attachment) bool

// LoaderFunc decodes an attachment's input into a payload. It may return the
// attachment itself or a Set (archive expansion).
type LoaderFunc func(context.Context, *attach.Attachment) (any, error)

// Handler transforms one attachment.
type Handler func(context.Context, *attach.Attachment) (*attach.Attachment, error)

// RefinerFunc post-processes an attachment or a whole set.
type RefinerFunc func(context.Context, any) (any, error)

// AdapterFunc folds an attachment or set into a caller-facing value.
type AdapterFunc func(ctx context.Context, in any, args ...string) (any, error)

// TypedCase binds a handler to a payload type key. The key matches the
// payload's concrete type name exactly or as a suffix, so handlers can be
// registered before their payload package is even linked in.
type TypedCase struct {
	Kind string
	Fn   Handler
}

type loaderEntry struct {
	name  string
	match Matcher
	fn    LoaderFunc
}

type modifierEntry struct {
	name     string
	cases    []TypedCase
	fallback Handler
}

type presenterEntry struct {
	name     string
	category string // "text" or "image"
	cases    []TypedCase
	fallback Handler
}

type refinerEntry struct {
	name string
	fn   RefinerFunc
}

type adapterEntry struct {
	name string
	fn   AdapterFunc
}

var (
	regMu      sync.Mutex
	frozen     bool
	loaders    []loaderEntry
	modifiers  = map[string]*modifierEntry{}
	presenters = map[string]*presenterEntry{}
	refiners   = map[string]*refinerEntry{}
	adapters   = map[string]*adapterEntry{}
)

func register(name string, insert func()) {
	regMu.Lock()
	defer regMu.Unlock()
	if frozen {
		panic(fmt.Sprintf("verb: registering %q after freeze", name))
	}
	insert()
}

// RegisterLoader appends a loader. Loaders dispatch in registration order;
// the first whose matcher accepts an unclaimed attachment runs.
func RegisterLoader(name string, match Matcher, fn LoaderFunc) {
	register(name, func() {
		loaders = append(loaders, loaderEntry{name: name, match: match, fn: fn})
	})
}

// RegisterModifier registers a modifier with its typed cases and optional
// untyped fallback.
func RegisterModifier(name string, cases []TypedCase, fallback Handler) {
	register(name, func() {
		modifiers[name] = &modifierEntry{name: name, cases: cases, fallback: fallback}
	})
}

// RegisterPresenter registers a presenter. category may be "text", "image",
// or "" for name-based auto-detection. The smart filter wraps every
// presenter at dispatch time; callers cannot bypass it through the registry.
func RegisterPresenter(name, category string, cases []TypedCase, fallback Handler) {
	register(name, func() {
		if category == "" {
			category = detectCategory(name)
		}
		presenters[name] = &presenterEntry{name: name, category: category, cases: cases, fallback: fallback}
	})
}

// RegisterRefiner registers a refiner.
func RegisterRefiner(name string, fn RefinerFunc) {
	register(name, func() {
		refiners[name] = &refinerEntry{name: name, fn: fn}
	})
}

// RegisterAdapter registers an adapter.
func RegisterAdapter(name string, fn AdapterFunc) {
	register(name, func() {
		adapters[name] = &adapterEntry{name: name, fn: fn}
	})
}

// Freeze closes the registries. Registration afterwards panics. Idempotent.
func Freeze() {
	regMu.Lock()
	frozen = true
	regMu.Unlock()
}

// presenterHandles reports whether the named presenter has a typed case for
// the given payload (used by the format gate to decide fallback presenting).
func presenterHandles(name string, payload any) bool {
	e, ok := presenters[name]
	if !ok {
		return false
	}
	for _, c := range e.cases {
		if kindMatches(payload, c.Kind) {
			return true
		}
	}
	return false
}
