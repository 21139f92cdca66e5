package webkit

import (
	"fmt"
	"strings"
)

// SendKey synthesizes a keyboard event inside the page. There is no
// programmatic hook into the hosted UI, so the event is dispatched as a DOM
// KeyboardEvent; delivery is fire-and-forget with no acknowledgment beyond
// "event dispatched".
func (w *Window) SendKey(k Key) error {
	if w == nil {
		return ErrWindowNotInitialized
	}
	return w.InjectScript(keyEventScript(k))
}

// keyEventScript builds the dispatch script for a synthetic key press.
// keydown and keyup are both sent; the hosted UI's shortcut handlers listen
// on keydown but some (video toggle) only commit on keyup.
func keyEventScript(k Key) string {
	key := k.Key
	if key == "" {
		key = k.Code
	}
	opts := fmt.Sprintf(
		`{key:%q,code:%q,ctrlKey:%t,shiftKey:%t,altKey:%t,bubbles:true,cancelable:true}`,
		key, k.Code, k.Ctrl, k.Shift, k.Alt,
	)
	var b strings.Builder
	b.WriteString("(function(){var t=document.activeElement||document.body;")
	b.WriteString(fmt.Sprintf("t.dispatchEvent(new KeyboardEvent('keydown',%s));", opts))
	b.WriteString(fmt.Sprintf("t.dispatchEvent(new KeyboardEvent('keyup',%s));", opts))
	b.WriteString("})();")
	return b.String()
}
