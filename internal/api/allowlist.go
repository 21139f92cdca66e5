package api

import (
	"net"
	"net/http"

	"github.com/rs/zerolog"
)

// AllowlistMiddleware rejects commands from source addresses outside the
// configured controller allowlist. An empty allowlist allows everyone. The
// list is re-read per request so preference changes apply without restart.
func AllowlistMiddleware(allowed func() []string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ips := allowed()
			if len(ips) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			for _, ip := range ips {
				if host == ip {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn().Str("remote", host).Str("path", r.URL.Path).Msg("rejected non-allowlisted controller")
			writeError(w, http.StatusForbidden, "source address not allowed")
		})
	}
}
