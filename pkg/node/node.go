// Package node turns Cloudinary resources into CloudinaryMedia graph nodes
// and registers them with a host content graph.
package node

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kataras/cloudinary-source/pkg/cloudinary"
)

// Type is the internal type tag of every emitted node.
const Type = "CloudinaryMedia"

// seedPrefix is prepended to the public id to build the node id seed.
const seedPrefix = "cloudinary-media-"

// namespace scopes generated ids to this source so that equal seeds from
// other sources map to different ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/kataras/cloudinary-source"))

// Internal is the typed envelope of a node.
type Internal struct {
	Type          string `json:"type"`
	Content       string `json:"content"`
	ContentDigest string `json:"contentDigest"`
}

// Node is a record registered with the host graph: a copy of the resource
// fields plus id, parent and internal.
type Node struct {
	ID       string
	Parent   *string
	Children []string
	Internal Internal
	Fields   map[string]any
}

// MarshalJSON flattens Fields next to id, parent, children and internal.
// The node keys win over resource fields of the same name.
func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Fields)+4)
	for k, v := range n.Fields {
		out[k] = v
	}

	children := n.Children
	if children == nil {
		children = []string{}
	}

	out["id"] = n.ID
	out["parent"] = n.Parent
	out["children"] = children
	out["internal"] = n.Internal
	return json.Marshal(out)
}

// PublicID returns the public id of the resource the node was built from.
func (n Node) PublicID() string {
	s, _ := n.Fields["public_id"].(string)
	return s
}

// Host is the content graph the nodes are registered with.
type Host interface {
	// CreateNodeID derives a stable node id from seed.
	CreateNodeID(seed string) string
	// CreateContentDigest fingerprints v for change detection.
	CreateContentDigest(v any) (string, error)
	// CreateNode registers n. The host owns n afterwards.
	CreateNode(ctx context.Context, n Node) error
}

// Helpers implements the id and digest part of Host. Hosts embed it.
type Helpers struct{}

// CreateNodeID returns the UUIDv5 of seed. The same seed always yields the same id.
func (Helpers) CreateNodeID(seed string) string {
	return uuid.NewSHA1(namespace, []byte(seed)).String()
}

// CreateContentDigest returns the hex MD5 of v's JSON encoding,
// or of v itself when it is already a string or a byte slice.
func (Helpers) CreateContentDigest(v any) (string, error) {
	var data []byte
	switch x := v.(type) {
	case string:
		data = []byte(x)
	case []byte:
		data = x
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("digest: %w", err)
		}
		data = b
	}

	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Seed returns the id seed of a resource.
func Seed(r cloudinary.Resource) string {
	return seedPrefix + r.PublicID()
}

// Build creates the node for r. The content is the JSON of r as it is now,
// so URL rewrites done before Build are part of it.
func Build(h Host, r cloudinary.Resource) (Node, error) {
	content, err := json.Marshal(r)
	if err != nil {
		return Node{}, fmt.Errorf("serialize %q: %w", r.PublicID(), err)
	}

	digest, err := h.CreateContentDigest(content)
	if err != nil {
		return Node{}, err
	}

	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}

	return Node{
		ID:       h.CreateNodeID(Seed(r)),
		Fields:   fields,
		Children: []string{},
		Internal: Internal{
			Type:          Type,
			Content:       string(content),
			ContentDigest: digest,
		},
	}, nil
}

// Emit builds and registers one node per resource, in order.
// It stops at the first failure and returns how many nodes were registered.
func Emit(ctx context.Context, h Host, resources []cloudinary.Resource) (int, error) {
	for i, r := range resources {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		n, err := Build(h, r)
		if err != nil {
			return i, err
		}
		if err := h.CreateNode(ctx, n); err != nil {
			return i, fmt.Errorf("create node %q: %w", r.PublicID(), err)
		}
	}
	return len(resources), nil
}
