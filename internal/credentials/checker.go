// Package credentials answers "is a Google account signed in" by inspecting
// the WebKit cookie store. The store is an opaque credential jar owned by
// the webview; only presence/absence of a session is queried, never cookie
// values.
package credentials

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver for database/sql
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite
)

// Checker reports whether a signed-in Google session exists in the cookie
// store at Path (WebKitGTK persists cookies as a Mozilla-format sqlite db).
type Checker struct {
	Path string
}

// Google's primary session cookies. Presence of any one of them means an
// account is signed in.
var sessionCookies = []string{"SID", "SAPISID", "__Secure-1PSID"}

// IsSignedIn is best-effort: a missing store, a locked database, or a schema
// mismatch all report false rather than erroring, since the jar belongs to
// the webview and may be mid-write.
func (c *Checker) IsSignedIn(ctx context.Context) bool {
	if c == nil || c.Path == "" {
		return false
	}
	if _, err := os.Stat(c.Path); err != nil {
		return false
	}

	database, err := sql.Open("sqlite3", "file:"+c.Path+"?mode=ro")
	if err != nil {
		return false
	}
	defer database.Close()

	for _, name := range sessionCookies {
		var count int
		err := database.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM moz_cookies WHERE host LIKE '%.google.com' AND name = ?",
			name,
		).Scan(&count)
		if err == nil && count > 0 {
			return true
		}
	}
	return false
}
