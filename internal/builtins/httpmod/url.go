package httpmod

import (
	"net/url"

	"hype/internal/errs"
)

// validateURL parses rawURL with the standard library's standards-compliant
// parser and requires a scheme and host. net/url.Parse already leaves
// correctly percent-encoded sequences untouched and only escapes characters
// that need it, so passing the parsed *url.URL straight to the request
// (via .String()) gives "already-encoded passes through, everything else
// gets encoded once" without any extra re-encoding pass here.
func validateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidUrl, err, "%q", rawURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errs.New(errs.InvalidUrl, "%q is missing a scheme or host", rawURL)
	}
	return u, nil
}
