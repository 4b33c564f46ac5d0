// Package youtube derives values from a video URL without touching the
// network: the canonical video identifier, the thumbnail location, and a
// pre-filled share link.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

// idPattern is the video identifier grammar: a non-empty run of URL-safe
// base64 characters. Length is not enforced; the platform has used 11 chars
// historically but documents no guarantee.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var watchHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// ExtractVideoID parses a source URL into the canonical video identifier.
// Recognized shapes:
//
//	youtu.be/<id>
//	youtube.com/watch?v=<id>
//	youtube.com/embed/<id>
//	youtube.com/v/<id>
//	youtube.com/shorts/<id>
//	youtube.com/live/<id>
//
// Any other host, a missing component, or a malformed query returns
// ("", false). Extraction failure is an expected outcome, not an error, and
// is distinguishable from a downstream fetch failure. Path matching is
// case-sensitive; when a query parameter repeats, the first value wins.
func ExtractVideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	host := u.Hostname()
	path := strings.TrimPrefix(u.Path, "/")

	switch {
	case host == "youtu.be":
		// Identifier is the first path segment.
		id, _, _ := strings.Cut(path, "/")
		return checkID(id)

	case watchHosts[host]:
		if u.Path == "/watch" {
			values, err := url.ParseQuery(u.RawQuery)
			if err != nil {
				return "", false
			}
			vs := values["v"]
			if len(vs) == 0 {
				return "", false
			}
			return checkID(vs[0])
		}
		for _, prefix := range []string{"embed/", "v/", "shorts/", "live/"} {
			if rest, ok := strings.CutPrefix(path, prefix); ok {
				id, _, _ := strings.Cut(rest, "/")
				return checkID(id)
			}
		}
		return "", false

	default:
		return "", false
	}
}

func checkID(id string) (string, bool) {
	if !idPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// ThumbnailURL returns the conventional max-resolution thumbnail location
// for a video identifier. The URL is derived, never validated.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
}

// ShareLink returns a WhatsApp share URL pre-filled with the summary text.
func ShareLink(summary string) string {
	return "https://wa.me/?text=" + url.QueryEscape(summary)
}
