package security

import (
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	applog "expensemate/internal/log"
)

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"<script", "union select", "etc/passwd", "cmd.exe",
}

var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
}

// Detector flags requests that look like vulnerability probes. It only
// observes; flagged requests are still served.
type Detector struct {
	flagged atomic.Int64
}

func NewDetector() *Detector {
	return &Detector{}
}

// Inspect returns the reason r looks suspicious, or "" when it does not.
func (d *Detector) Inspect(r *http.Request) string {
	path := strings.ToLower(r.URL.Path)
	query := r.URL.RawQuery
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	query = strings.ToLower(query)
	for _, p := range suspiciousPatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return "pattern " + p
		}
	}

	ua := strings.ToLower(r.Header.Get("User-Agent"))
	if ua == "" {
		return ""
	}
	for _, a := range scannerAgents {
		if strings.Contains(ua, a) {
			return "user agent " + a
		}
	}
	return ""
}

// Flagged is the number of suspicious requests seen so far.
func (d *Detector) Flagged() int64 {
	return d.flagged.Load()
}

// Middleware logs suspicious requests at WARN on the request logger.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := d.Inspect(r); reason != "" {
			d.flagged.Add(1)
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, ClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}
