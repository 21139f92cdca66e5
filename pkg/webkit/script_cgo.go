//go:build webkit_cgo

package webkit

import (
	"context"
	"fmt"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
)

// EvalScript evaluates JavaScript and returns its result serialized as a
// string. Blocks until the page answers or ctx expires.
func (w *Window) EvalScript(ctx context.Context, js string) (string, error) {
	if w.IsDestroyed() {
		return "", ErrWindowDestroyed
	}

	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)

	IdleAdd(func() {
		w.view.EvaluateJavascript(ctx, js, len(js), "", "", func(res gio.AsyncResulter) {
			value, err := w.view.EvaluateJavascriptFinish(res)
			if err != nil {
				done <- result{err: fmt.Errorf("webkit: evaluate: %w", err)}
				return
			}
			done <- result{value: value.ToString()}
		})
	})

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
