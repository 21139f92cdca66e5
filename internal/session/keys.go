package session

import (
	"regexp"

	"github.com/deckpilot/deckpilot/pkg/webkit"
)

// Key combinations understood by the hosted slide UI. There is no API into
// the deck engine; these synthetic presses are the entire command channel.
var (
	// Ctrl+F5 enters presentation mode from the editor.
	keyPresent = webkit.Key{Code: "F5", Key: "F5", Ctrl: true}
	// "s" toggles the speaker-notes popup while presenting.
	keyNotesToggle = webkit.Key{Code: "KeyS", Key: "s"}

	keyNext     = webkit.Key{Code: "ArrowRight", Key: "ArrowRight"}
	keyPrevious = webkit.Key{Code: "ArrowLeft", Key: "ArrowLeft"}
	// "k" plays/pauses an embedded video on the current slide.
	keyVideoToggle = webkit.Key{Code: "KeyK", Key: "k"}

	keyNotesScrollUp   = webkit.Key{Code: "ArrowUp", Key: "ArrowUp"}
	keyNotesScrollDown = webkit.Key{Code: "ArrowDown", Key: "ArrowDown"}
	keyNotesZoomIn     = webkit.Key{Code: "Equal", Key: "+", Ctrl: true}
	keyNotesZoomOut    = webkit.Key{Code: "Minus", Key: "-", Ctrl: true}
)

// The hosted UI rewrites its URL when it enters presentation mode. The
// editor URL also contains the deck id, so the editor pattern is excluded
// explicitly rather than trusting the present pattern alone.
var (
	presentURLPattern = regexp.MustCompile(`/(present|localpresent)([/?#]|$)`)
	editorURLPattern  = regexp.MustCompile(`/edit([/?#]|$)`)
)

// isPresentModeURL reports whether the window has navigated into
// present/local-present mode.
func isPresentModeURL(u string) bool {
	return presentURLPattern.MatchString(u) && !editorURLPattern.MatchString(u)
}

// slidePositionScript reads the slide indicator's accessibility attributes
// from the notes popup DOM. Returns "pos/size", or an empty string when the
// indicator is not in the DOM (mid-navigation, popup still loading).
const slidePositionScript = `(function(){` +
	`var e=document.querySelector('[aria-posinset]');` +
	`if(!e){return '';}` +
	`return e.getAttribute('aria-posinset')+'/'+(e.getAttribute('aria-setsize')||'');` +
	`})();`
