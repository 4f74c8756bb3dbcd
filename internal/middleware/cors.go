package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists exact origins or "*.domain" subdomain patterns.
	// An empty list denies every cross-origin request.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// DefaultCORSConfig returns the settings used for the users API.
func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Accept", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         600,
	}
}

// originMatcher checks an Origin header against exact and suffix rules.
type originMatcher struct {
	exact    map[string]bool
	suffixes []string
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]bool, len(origins))}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "":
		case strings.HasPrefix(o, "*."):
			m.suffixes = append(m.suffixes, o[1:])
		default:
			m.exact[o] = true
		}
	}
	return m
}

// allows reports whether origin is permitted. "*.example.com" matches
// "https://api.example.com" but not "https://notexample.com".
func (m originMatcher) allows(origin string) bool {
	origin = strings.ToLower(origin)
	if m.exact[origin] {
		return true
	}
	for _, suffix := range m.suffixes {
		if !strings.HasSuffix(origin, suffix) {
			continue
		}
		host := strings.TrimSuffix(origin, suffix)
		if i := strings.Index(host, "://"); i >= 0 {
			host = host[i+3:]
		}
		if host != "" {
			return true
		}
	}
	return false
}

// CORS answers preflight requests and decorates responses for allowed origins.
// Requests without an Origin header pass through untouched.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	matcher := newOriginMatcher(cfg.AllowedOrigins)
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if !matcher.allows(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if preflight {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if maxAge != "" {
					h.Set("Access-Control-Max-Age", maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
