package queryparse

import (
	"net/url"
	"strings"
)

// DetectURL recognizes a pasted dealer URL inside the raw query. It returns
// the URL when any whitespace-delimited token is a well-formed http(s) URL
// whose host matches one of the known dealer domains (suffix match), and ""
// otherwise. With no domain list, any well-formed http(s) URL matches.
//
// A pasted URL is an identity lookup, not a fuzzy query: the caller
// short-circuits the rest of the parse pipeline on a non-empty result.
func DetectURL(raw string, dealerDomains []string) string {
	for _, tok := range strings.Fields(raw) {
		if !strings.HasPrefix(tok, "http://") && !strings.HasPrefix(tok, "https://") {
			continue
		}
		u, err := url.Parse(tok)
		if err != nil || u.Host == "" {
			continue
		}
		if matchesDomain(u.Hostname(), dealerDomains) {
			return tok
		}
	}
	return ""
}

func matchesDomain(host string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(d, "www."))
		if host == d || strings.HasSuffix(host, "."+d) ||
			strings.TrimPrefix(host, "www.") == d {
			return true
		}
	}
	return false
}
