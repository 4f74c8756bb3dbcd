package repository

import (
	"net/url"
	"regexp"
	"strings"
)

// passwordPattern matches a keyword/value password, quoted or bare.
var passwordPattern = regexp.MustCompile(`(?i)(password\s*=\s*)('(?:[^'\\]|\\.)*'|\S+)`)

// RedactURL removes the password segment from a connection descriptor.
// Both URL and keyword/value ("host=db password=x") forms are handled.
// Unparseable URLs are replaced entirely.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}

	if !strings.Contains(raw, "://") {
		return redactKeywords(raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	// keyword/value style options may carry the password in the query
	if q := parsed.Query(); q.Has("password") {
		q.Set("password", "redacted")
		parsed.RawQuery = q.Encode()
	}

	return parsed.String()
}

// SanitizeError renders err with every secret replaced by its redacted form.
func SanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := RedactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return redactKeywords(msg)
}

func redactKeywords(s string) string {
	return passwordPattern.ReplaceAllString(s, "${1}redacted")
}
