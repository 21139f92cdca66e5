package webkit

// Config holds WebView/window configuration shared by both windows of a
// session.
type Config struct {
	// UserAgent string for the WebView
	UserAgent string

	// EnableJavaScript controls JavaScript execution
	EnableJavaScript bool

	// EnableMediaStream controls media stream support (camera/mic prompts)
	EnableMediaStream bool

	// HardwareAcceleration controls GPU acceleration
	HardwareAcceleration bool

	// DataDir is the directory for persistent data (cookies, localStorage)
	DataDir string

	// CacheDir is the directory for HTTP cache
	CacheDir string
}

// GetDefaultConfig returns a Config with sensible defaults.
func GetDefaultConfig() *Config {
	return &Config{
		UserAgent:            "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
		EnableJavaScript:     true,
		EnableMediaStream:    false,
		HardwareAcceleration: true,
	}
}

// Rect is a window or display geometry in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Inset returns the rect shrunk by margin on every side.
func (r Rect) Inset(margin int) Rect {
	return Rect{
		X:      r.X + margin,
		Y:      r.Y + margin,
		Width:  r.Width - 2*margin,
		Height: r.Height - 2*margin,
	}
}

// Display describes one attached physical display.
type Display struct {
	ID      int  `json:"id"`
	Bounds  Rect `json:"bounds"`
	Primary bool `json:"primary"`
}

// Key is a synthetic keyboard event dispatched into the page. Code is a DOM
// KeyboardEvent code value ("F5", "ArrowRight", "KeyS", ...).
type Key struct {
	Code  string
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
}
