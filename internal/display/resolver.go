// Package display maps configured logical display identifiers to currently
// attached physical displays.
package display

import (
	"github.com/deckpilot/deckpilot/pkg/webkit"
)

// Source enumerates attached displays. The default source is the webkit
// backend; tests substitute a fixture.
type Source func() []webkit.Display

// Resolver resolves configured display ids against whatever is attached
// right now. Configured ids are not assumed stable across reboots, so
// resolution happens on every open, not once at startup.
type Resolver struct {
	source Source
}

// NewResolver creates a Resolver backed by the given source; nil means the
// native display list.
func NewResolver(source Source) *Resolver {
	if source == nil {
		source = webkit.ListDisplays
	}
	return &Resolver{source: source}
}

// List returns all currently attached displays.
func (r *Resolver) List() []webkit.Display {
	return r.source()
}

// Resolve returns the display with the configured id, falling back to the
// first available display when the configured one is absent. The zero
// Display is returned only when nothing at all is attached.
func (r *Resolver) Resolve(configuredID int) webkit.Display {
	displays := r.source()
	if len(displays) == 0 {
		return webkit.Display{}
	}
	for _, d := range displays {
		if d.ID == configuredID {
			return d
		}
	}
	return displays[0]
}
