//go:build !webkit_cgo

package webkit

import "context"

// EvalScript evaluates JavaScript and returns its string result. No engine
// exists in non-CGO builds, so evaluation always fails; callers treat this
// as "state unknown this cycle".
func (w *Window) EvalScript(ctx context.Context, js string) (string, error) {
	if w == nil || w.IsDestroyed() {
		return "", ErrWindowDestroyed
	}
	_ = ctx
	_ = js
	return "", ErrNotImplemented
}
