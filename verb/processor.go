// CLAUDE:SUMMARY Processor discovery — ordered primary registry plus named explicit-access registry.
package verb

import (
	"fmt"
	"sync"

	"github.com/hazyhaar/annexe/attach"
)

// Processor is a top-level pipeline registered for automatic selection
// (primary) or explicit invocation (named).
type Processor struct {
	Name        string
	Description string
	Match       func(*attach.Attachment) bool
	Pipe        *Pipeline
}

var (
	procMu     sync.Mutex
	primaries  []*Processor
	namedProcs = map[string]*Processor{}
)

// RegisterPrimary appends a processor to the auto-selection list. Order is
// registration order; the first match wins.
func RegisterPrimary(match func(*attach.Attachment) bool, pipe *Pipeline, description string) {
	procMu.Lock()
	defer procMu.Unlock()
	if frozen {
		panic("verb: registering processor after freeze")
	}
	primaries = append(primaries, &Processor{Match: match, Pipe: pipe, Description: description})
}

// RegisterNamed registers a processor reachable only by explicit name.
func RegisterNamed(name string, match func(*attach.Attachment) bool, pipe *Pipeline, description string) {
	procMu.Lock()
	defer procMu.Unlock()
	if frozen {
		panic(fmt.Sprintf("verb: registering processor %q after freeze", name))
	}
	namedProcs[name] = &Processor{Name: name, Match: match, Pipe: pipe, Description: description}
}

// FindPrimary returns the first primary processor accepting the attachment,
// or nil when the universal fallback should run instead.
func FindPrimary(a *attach.Attachment) *Processor {
	for _, p := range primaries {
		if p.Match == nil || p.Match(a) {
			return p
		}
	}
	return nil
}

// NamedProcessor looks up a processor by name.
func NamedProcessor(name string) (*Processor, bool) {
	p, ok := namedProcs[name]
	return p, ok
}

// Processors lists every registered processor, primaries first.
func Processors() []*Processor {
	out := make([]*Processor, 0, len(primaries)+len(namedProcs))
	out = append(out, primaries...)
	for _, p := range namedProcs {
		out = append(out, p)
	}
	return out
}
