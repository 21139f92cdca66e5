// Package session owns the presentation session: window lifecycle, the
// activation protocol that drives the hosted slide UI, and the best-effort
// slide state tracker.
package session

// ActivationState names a step of the activation protocol. The hosted UI
// offers no completion signals, so states advance on trigger dispatch, not
// on confirmation.
type ActivationState int

const (
	StateClosed ActivationState = iota
	StateLoading
	StatePresentTriggered
	StateNotesTriggered
	StateReady
)

func (s ActivationState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StatePresentTriggered:
		return "present-triggered"
	case StateNotesTriggered:
		return "notes-triggered"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// TriggerSource identifies which path fired the notes-activation trigger.
type TriggerSource int

const (
	TriggerNavigation TriggerSource = iota
	TriggerFallback
	TriggerCommand
)

func (t TriggerSource) String() string {
	switch t {
	case TriggerNavigation:
		return "navigation"
	case TriggerFallback:
		return "fallback-timer"
	case TriggerCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Session is the in-process record of one open presentation. One per running
// instance; nil between close and the next open.
type Session struct {
	URL       string
	Title     string
	WithNotes bool
	State     ActivationState

	// sKeySent guards the notes trigger: exactly one of the navigation
	// observer and the fallback timer may fire it, never both.
	sKeySent bool

	// notesScheduled marks that the navigation observer already armed its
	// settle timer, making the observer at-most-once.
	notesScheduled bool

	gen uint64
}

// Status is the polled machine-readable session state.
type Status struct {
	PresentationOpen  bool   `json:"presentationOpen"`
	NotesOpen         bool   `json:"notesOpen"`
	CurrentSlide      *int   `json:"currentSlide"`
	TotalSlides       *int   `json:"totalSlides"`
	PresentationURL   string `json:"presentationUrl,omitempty"`
	PresentationTitle string `json:"presentationTitle,omitempty"`
	State             string `json:"state"`
	SignedIn          bool   `json:"signedIn"`
}
