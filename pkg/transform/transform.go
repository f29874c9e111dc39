// Package transform splices a delivery transformation (e.g. "w_200,c_fill")
// into Cloudinary delivery URLs.
//
// Two strategies exist. ModeFixedIndex inserts the token as the 7th
// slash-separated segment and never fails; it matches delivery URLs of the
// shape https://res.cloudinary.com/<cloud>/<resource_type>/<type>/... only.
// ModePathAware parses the path and inserts right after the delivery type,
// returning ErrShortPath when that segment does not exist.
package transform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kataras/cloudinary-source/pkg/cloudinary"
)

// FixedIndex is the slash-segment index the token is inserted at in ModeFixedIndex.
const FixedIndex = 6

// ErrShortPath is returned in ModePathAware when the URL path has no delivery type segment.
var ErrShortPath = errors.New("transform: URL path has no delivery type segment")

// Mode selects the insertion strategy.
type Mode int

const (
	ModeFixedIndex Mode = iota
	ModePathAware
)

func (m Mode) String() string {
	switch m {
	case ModeFixedIndex:
		return "fixed"
	case ModePathAware:
		return "path"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "fixed" or "path". The empty string is ModeFixedIndex.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return ModeFixedIndex, nil
	case "path":
		return ModePathAware, nil
	default:
		return 0, fmt.Errorf("invalid transform mode %q (must be fixed or path)", s)
	}
}

// Insert splits rawURL on "/", inserts token at FixedIndex and joins it back.
// A URL with fewer segments gets the token appended at the end.
// The token is not validated.
func Insert(rawURL, token string) string {
	parts := strings.Split(rawURL, "/")

	idx := FixedIndex
	if idx > len(parts) {
		idx = len(parts)
	}

	out := make([]string, 0, len(parts)+1)
	out = append(out, parts[:idx]...)
	out = append(out, token)
	out = append(out, parts[idx:]...)

	return strings.Join(out, "/")
}

// InsertAfterDeliveryType inserts token after the delivery type segment of the
// URL path /<cloud>/<resource_type>/<type>/[version/]<public_id>.
// Query and fragment are kept as they are.
func InsertAfterDeliveryType(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("transform: parse %q: %w", rawURL, err)
	}

	// cloud, resource type, delivery type and at least one more segment.
	segments := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	if len(segments) < 4 {
		return "", fmt.Errorf("%w: %q", ErrShortPath, rawURL)
	}

	out := make([]string, 0, len(segments)+1)
	out = append(out, segments[:3]...)
	out = append(out, token)
	out = append(out, segments[3:]...)

	u.RawPath = ""
	u.Path = ""
	escaped := "/" + strings.Join(out, "/")
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("transform: %w", err)
	}
	u.Path = unescaped
	u.RawPath = escaped

	return u.String(), nil
}

// URL applies token to rawURL with the given mode.
func URL(rawURL, token string, mode Mode) (string, error) {
	if mode == ModePathAware {
		return InsertAfterDeliveryType(rawURL, token)
	}
	return Insert(rawURL, token), nil
}

// Apply rewrites both the url and the secure_url of r in place.
// Empty URLs are left untouched.
func Apply(r *cloudinary.Resource, token string, mode Mode) error {
	if u := r.URL(); u != "" {
		out, err := URL(u, token, mode)
		if err != nil {
			return err
		}
		r.SetURL(out)
	}

	if u := r.SecureURL(); u != "" {
		out, err := URL(u, token, mode)
		if err != nil {
			return err
		}
		r.SetSecureURL(out)
	}

	return nil
}
