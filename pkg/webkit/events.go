package webkit

import "sync"

// Window creation notification. Every window that comes into existence in
// this process (created directly or spawned by page content) is published
// here. The hosted UI does not tag its popups with a stable name, so
// creation order and identity are the only correlation signals callers get.

var (
	creationMu    sync.Mutex
	creationHooks = make(map[uint64]func(*Window))
	creationSeq   uint64
)

// OnWindowCreated registers a hook invoked for every window created after
// this call. The returned cancel func deregisters it; cancel is safe to call
// more than once.
func OnWindowCreated(hook func(*Window)) (cancel func()) {
	creationMu.Lock()
	creationSeq++
	id := creationSeq
	creationHooks[id] = hook
	creationMu.Unlock()

	return func() {
		creationMu.Lock()
		delete(creationHooks, id)
		creationMu.Unlock()
	}
}

func publishWindowCreated(w *Window) {
	creationMu.Lock()
	hooks := make([]func(*Window), 0, len(creationHooks))
	for _, h := range creationHooks {
		hooks = append(hooks, h)
	}
	creationMu.Unlock()

	for _, h := range hooks {
		h(w)
	}
}
