package session

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Tracker maintains the best-effort slide position. Two sources feed it:
// optimistic arithmetic on accepted navigation commands, and values scraped
// from the notes popup DOM. Scraped values override the optimistic counter
// because they are closer to ground truth; scrape failure leaves the
// counter untouched.
type Tracker struct {
	mu      sync.Mutex
	current int // 0 = unknown
	total   int // 0 = unknown
}

// Reset clears all tracked state (session closed).
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = 0
	t.total = 0
}

// Start marks a fresh deck open at slide 1.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = 1
	t.total = 0
}

// Next advances the optimistic counter and returns the new position.
func (t *Tracker) Next() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == 0 {
		t.current = 1
	}
	t.current++
	return t.current
}

// Previous decrements the optimistic counter, clamped at 1. Previous at
// slide 1 is a no-op that still counts as success.
func (t *Tracker) Previous() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current <= 1 {
		t.current = 1
		return t.current
	}
	t.current--
	return t.current
}

// Set jumps the optimistic counter to n (clamped at 1).
func (t *Tracker) Set(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 {
		n = 1
	}
	t.current = n
}

// Observe applies a scraped position/total, overriding the optimistic
// counter. Values < 1 are ignored as unparseable noise.
func (t *Tracker) Observe(pos, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pos >= 1 {
		t.current = pos
	}
	if total >= 1 {
		t.total = total
	}
}

// Slide returns the tracked position; zeros mean unknown.
func (t *Tracker) Slide() (current, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.total
}

// parseSlidePosition parses the "pos/size" scrape result. The size half is
// optional; an empty string means the indicator was absent.
func parseSlidePosition(s string) (pos, total int, err error) {
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return 0, 0, fmt.Errorf("slide indicator absent")
	}
	parts := strings.SplitN(s, "/", 2)
	pos, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || pos < 1 {
		return 0, 0, fmt.Errorf("unparseable slide position %q", s)
	}
	if len(parts) == 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n >= 1 {
			total = n
		}
	}
	return pos, total, nil
}
