package common

import (
	"net/url"
)

// IsValidURL reports whether rawurl parses as an absolute URL with a
// host. url.Parse alone accepts almost anything, so check the parts
// that matter.
func IsValidURL(rawurl string) bool {
	parsed, err := url.ParseRequestURI(rawurl)
	if err != nil {
		return false
	}
	return len(parsed.Scheme) > 0 && len(parsed.Host) > 0
}
