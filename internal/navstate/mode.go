// Package navstate resolves audience mode from request URLs and tracks which
// page section is active for a given scroll position.
package navstate

import (
	"net/url"

	"github.com/stem-for-society/enquiry-api/internal/models"
)

// modeParam is the query parameter carrying the audience mode.
const modeParam = "mode"

// ResolveMode reads the audience mode from query parameters. Unknown or
// missing values fall back to individual; the legacy "institution" value is
// accepted as institutional.
func ResolveMode(query url.Values) models.EnquiryMode {
	return models.ParseEnquiryMode(query.Get(modeParam))
}

// RewriteModeURL returns u with its mode parameter set to the canonical
// spelling of mode. The rest of the URL (path, other parameters, fragment) is
// preserved. Callers navigate with replace semantics: switching audience on
// the same page must not grow browser history.
func RewriteModeURL(u *url.URL, mode models.EnquiryMode) *url.URL {
	out := *u
	q := out.Query()
	q.Set(modeParam, string(mode))
	out.RawQuery = q.Encode()
	return &out
}
