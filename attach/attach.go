// CLAUDE:SUMMARY Central Attachment record — path, DSL commands, payload, text/image buffers, scoped resources.
// Package attach defines the in-memory record every pipeline operates on.
//
// An Attachment starts as an input string with optional [key:value] commands,
// accumulates text and base64 PNG images as verbs run, and releases any
// decoder handles or temp files it acquired when closed.
package attach

import (
	"fmt"
	"os"
	"strings"
)

// Attachment is the unit of work flowing through pipelines.
//
// Text and Images are append-only by convention: presenters and refiners add,
// never remove. Payload is set by the first matching loader and left alone by
// subsequent loaders, which is what makes loader chains usable as fallbacks.
type Attachment struct {
	// Path is the input locator after command stripping. Immutable.
	Path string

	// Commands holds the parsed [key:value] pairs. Later duplicates win.
	Commands Commands

	// Payload is the decoded document handle. Concrete types live next to
	// their loaders; dispatch matches on the runtime type name.
	Payload any

	// Text is the accumulated presenter output.
	Text string

	// Images holds base64 PNG strings or data:image/png;base64 URLs.
	Images []string

	// Audio holds base64 audio strings. Reserved for audio presenters.
	Audio []string

	// Metadata accumulates diagnostic and structural information.
	Metadata map[string]any

	// Trace lists the verbs successfully applied, in order.
	Trace []string

	tempFiles []string
	closers   []func() error
	closed    bool
}

// New parses the input string and returns an empty attachment.
// It never fails: malformed command brackets stay in the path verbatim.
// No I/O happens here.
func New(input string) *Attachment {
	path, cmds := ParseInput(input)
	return &Attachment{
		Path:     path,
		Commands: cmds,
		Metadata: make(map[string]any),
	}
}

// AppendText appends to the text buffer.
func (a *Attachment) AppendText(s string) {
	a.Text += s
}

// AppendImage appends a base64 PNG or data-URL entry.
func (a *Attachment) AppendImage(b64 string) {
	a.Images = append(a.Images, b64)
}

// AppendAudio appends a base64 audio entry.
func (a *Attachment) AppendAudio(b64 string) {
	a.Audio = append(a.Audio, b64)
}

// SetPayload sets the payload if none is present yet and reports whether it
// did. Loaders rely on the no-op behavior to chain safely.
func (a *Attachment) SetPayload(p any) bool {
	if a.Payload != nil {
		return false
	}
	a.Payload = p
	return true
}

// HasPayload reports whether a loader has claimed this attachment.
func (a *Attachment) HasPayload() bool { return a.Payload != nil }

// Record stores a metadata value.
func (a *Attachment) Record(key string, value any) {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = value
}

// RecordError stores a verb failure under "<verb>_error" and keeps going.
func (a *Attachment) RecordError(verb string, err error) {
	a.Record(verb+"_error", err.Error())
}

// Traced appends a verb name to the pipeline trace.
func (a *Attachment) Traced(verb string) {
	a.Trace = append(a.Trace, verb)
}

// AddTempFile registers a temporary file for deletion on Close.
func (a *Attachment) AddTempFile(path string) {
	a.tempFiles = append(a.tempFiles, path)
}

// TempFiles returns the registered temp file paths.
func (a *Attachment) TempFiles() []string { return a.tempFiles }

// OnClose registers a release function, run in LIFO order on Close.
func (a *Attachment) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in LIFO order and deletes temp files.
// Idempotent; cleanup failures are ignored.
func (a *Attachment) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	for i := len(a.tempFiles) - 1; i >= 0; i-- {
		_ = os.Remove(a.tempFiles[i])
	}
	return nil
}

// InputString reconstructs the original input up to whitespace and command
// ordering: the path followed by every command in sorted key order.
func (a *Attachment) InputString() string {
	return a.Path + a.Commands.String()
}

// String renders a human-readable summary. Base64 blobs are elided down to a
// short preview so logs stay readable.
func (a *Attachment) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Attachment(path=%q, text=%d chars, images=%d", a.Path, len(a.Text), len(a.Images))
	if preview := a.imagePreview(); preview != "" {
		fmt.Fprintf(&sb, ", first_image=%s", preview)
	}
	if len(a.Trace) > 0 {
		fmt.Fprintf(&sb, ", trace=[%s]", strings.Join(a.Trace, " → "))
	}
	sb.WriteString(")")
	return sb.String()
}

func (a *Attachment) imagePreview() string {
	for _, img := range a.Images {
		if strings.HasSuffix(img, "_placeholder") {
			continue
		}
		if len(img) <= 40 {
			return img
		}
		return img[:30] + "…" + img[len(img)-10:]
	}
	return ""
}
