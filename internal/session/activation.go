package session

import "time"

// Delays are the fixed timing heuristics of the activation protocol. The
// hosted UI exposes no programmatic hooks, so these constants were tuned
// against real host-UI latency and are part of the contract, not an
// implementation detail.
type Delays struct {
	// PresentSettle is waited after did-finish-load before the
	// enter-presentation key is sent; load completion does not imply
	// interactivity.
	PresentSettle time.Duration

	// NotesSettle is waited after the present-mode URL is observed before
	// the notes toggle is sent.
	NotesSettle time.Duration

	// NotesFallback is the timeout (from load completion) after which the
	// notes toggle is sent even if the present-mode navigation was never
	// observed. A slow deck would otherwise never show notes.
	NotesFallback time.Duration

	// ScrapeTimeout bounds each DOM scrape during a status read.
	ScrapeTimeout time.Duration
}

// DefaultDelays returns the production timing constants.
func DefaultDelays() Delays {
	return Delays{
		PresentSettle: 2 * time.Second,
		NotesSettle:   500 * time.Millisecond,
		NotesFallback: 5 * time.Second,
		ScrapeTimeout: 500 * time.Millisecond,
	}
}
