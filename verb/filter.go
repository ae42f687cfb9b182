// CLAUDE:SUMMARY Smart presenter gate — suppresses wrong-modality and wrong-format presenters per DSL commands.
package verb

import (
	"regexp"

	"github.com/hazyhaar/annexe/attach"
)

// Category tags for presenters.
const (
	CategoryText  = "text"
	CategoryImage = "image"
)

var (
	textNameRe  = regexp.MustCompile(`(?i)(text|markdown|csv|xml|html|json|yaml|summary|head|metadata|structure|files)`)
	imageNameRe = regexp.MustCompile(`(?i)(image|thumbnail|chart|graph|plot|visual|photo|picture|screenshot)`)
)

// detectCategory infers a presenter's modality from its name. Image patterns
// win over text patterns; unknown names default to text so the user always
// gets something readable.
func detectCategory(name string) string {
	if imageNameRe.MatchString(name) {
		return CategoryImage
	}
	if textNameRe.MatchString(name) {
		return CategoryText
	}
	return CategoryText
}

// preferredPresenter maps a canonical format to the presenter that should
// produce the text for it.
func preferredPresenter(format string) string {
	switch format {
	case attach.FormatPlain:
		return "text"
	case attach.FormatMarkdown:
		return "markdown"
	case attach.FormatStructured:
		return "xml"
	default:
		// html, xml, json: a structural presenter of the same name.
		return format
	}
}

// gateAllows applies the modality and format gates. It is consulted on every
// presenter dispatch, so pipelines can stack presenters additively and let
// the commands decide which ones actually run.
func gateAllows(e *presenterEntry, a *attach.Attachment) bool {
	// Modality gate: images:false silences image presenters.
	if e.category == CategoryImage && !a.Commands.Bool("images", true) {
		return false
	}
	if e.category != CategoryText {
		return true
	}
	// Format gate applies only to the generic text presenters; named
	// structural presenters run when a pipeline asks for them.
	if e.name != "text" && e.name != "markdown" {
		return true
	}
	preferred := preferredPresenter(a.Commands.Format())
	if e.name == preferred {
		return true
	}
	// The preferred presenter can handle this payload: defer to it.
	if presenterHandles(preferred, a.Payload) {
		return false
	}
	// Nobody better is available; run as fallback so text is never empty.
	return true
}
