package cloudinary

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
)

// Resource represents a single media asset returned by the Admin API resource listing.
// Every field the API sent is kept in Fields so that it can be passed through untouched;
// the accessor methods cover the handful of fields the source logic depends on.
type Resource struct {
	Fields map[string]any
}

// NewResource wraps a decoded field map as a Resource.
func NewResource(fields map[string]any) Resource {
	if fields == nil {
		fields = make(map[string]any)
	}
	return Resource{Fields: fields}
}

// PublicID returns the unique public identifier of the asset (e.g. "samples/sheep").
func (r Resource) PublicID() string { return r.str("public_id") }

// AssetID returns the immutable asset id, empty for accounts that do not expose it.
func (r Resource) AssetID() string { return r.str("asset_id") }

// URL returns the http delivery URL.
func (r Resource) URL() string { return r.str("url") }

// SecureURL returns the https delivery URL.
func (r Resource) SecureURL() string { return r.str("secure_url") }

// Format returns the file format, such as "jpg" or "mp4".
func (r Resource) Format() string { return r.str("format") }

// ResourceType returns the asset kind: "image", "video" or "raw".
func (r Resource) ResourceType() string { return r.str("resource_type") }

// Type returns the delivery type, such as "upload" or "private".
func (r Resource) Type() string { return r.str("type") }

// Bytes returns the stored asset size in bytes, or 0 when unknown.
func (r Resource) Bytes() int64 {
	switch v := r.Fields["bytes"].(type) {
	case json.Number:
		n, _ := v.Int64()
		return n
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// SetURL replaces the http delivery URL in place.
func (r *Resource) SetURL(u string) { r.set("url", u) }

// SetSecureURL replaces the https delivery URL in place.
func (r *Resource) SetSecureURL(u string) { r.set("secure_url", u) }

func (r Resource) str(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

func (r *Resource) set(key string, v any) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[key] = v
}

// UnmarshalJSON decodes every field of the asset, keeping numbers as json.Number
// so that large integers (bytes, version) survive a round trip unchanged.
func (r *Resource) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	fields := make(map[string]any)
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	r.Fields = fields
	return nil
}

// MarshalJSON encodes all fields. Keys are emitted in sorted order, which keeps
// the serialized form stable across runs.
func (r Resource) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Fields)
}

// ResourcesResponse represents one page of the Admin API resource listing.
// A non-empty NextCursor means more resources exist beyond this batch.
type ResourcesResponse struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// HasMore reports whether the listing continues on another page.
func (r *ResourcesResponse) HasMore() bool {
	return r != nil && r.NextCursor != ""
}

// ListOptions holds the filters sent to the resource listing endpoint.
// They are passed through as-is; the API is the one that validates them.
type ListOptions struct {
	ResourceType string // "image", "video", "raw"; path segment
	Type         string // "upload", "private", "authenticated", ...; path segment
	Prefix       string
	MaxResults   int
	Tags         bool
	Context      bool
	Direction    string // "asc" or "desc"
	StartAt      string
	NextCursor   string
}

// WithCursor returns a copy of the options that requests the page identified by cursor.
func (o ListOptions) WithCursor(cursor string) ListOptions {
	o.NextCursor = cursor
	return o
}

// Query encodes the options as URL query parameters.
func (o ListOptions) Query() url.Values {
	q := url.Values{}
	if o.Prefix != "" {
		q.Set("prefix", o.Prefix)
	}
	if o.MaxResults > 0 {
		q.Set("max_results", strconv.Itoa(o.MaxResults))
	}
	if o.Tags {
		q.Set("tags", "true")
	}
	if o.Context {
		q.Set("context", "true")
	}
	if o.Direction != "" {
		q.Set("direction", o.Direction)
	}
	if o.StartAt != "" {
		q.Set("start_at", o.StartAt)
	}
	if o.NextCursor != "" {
		q.Set("next_cursor", o.NextCursor)
	}
	return q
}
