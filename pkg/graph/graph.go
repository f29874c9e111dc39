// Package graph provides content graph hosts that CloudinaryMedia nodes
// can be registered with: an in-memory graph, a JSON writer, an SQLite
// store and a fan-out over several of them.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kataras/cloudinary-source/pkg/node"
)

// Memory keeps registered nodes in registration order.
type Memory struct {
	node.Helpers

	mu    sync.Mutex
	nodes []node.Node
}

// NewMemory returns an empty in-memory graph.
func NewMemory() *Memory { return &Memory{} }

// CreateNode appends n.
func (m *Memory) CreateNode(_ context.Context, n node.Node) error {
	m.mu.Lock()
	m.nodes = append(m.nodes, n)
	m.mu.Unlock()
	return nil
}

// Nodes returns a copy of the registered nodes.
func (m *Memory) Nodes() []node.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]node.Node(nil), m.nodes...)
}

// Len returns the number of registered nodes.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

// JSONWriter buffers nodes and writes them as one indented JSON array on Close.
type JSONWriter struct {
	Memory
	w io.Writer
}

// NewJSONWriter returns a host that writes to w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

// Close writes the array. An empty graph is written as [].
func (j *JSONWriter) Close() error {
	nodes := j.Nodes()
	if nodes == nil {
		nodes = []node.Node{}
	}

	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("write nodes: %w", err)
	}
	return nil
}

// Registrar is the registration half of node.Host.
type Registrar interface {
	CreateNode(ctx context.Context, n node.Node) error
}

// Tee registers every node with all of its sinks. Ids and digests come from node.Helpers.
type Tee struct {
	node.Helpers
	sinks []Registrar
}

// NewTee returns a host fanning out to sinks.
func NewTee(sinks ...Registrar) *Tee {
	return &Tee{sinks: sinks}
}

// CreateNode registers n with each sink concurrently and returns the first error.
// Every sink still sees nodes in the order CreateNode is called.
func (t *Tee) CreateNode(ctx context.Context, n node.Node) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range t.sinks {
		s := s
		g.Go(func() error {
			return s.CreateNode(gctx, n)
		})
	}
	return g.Wait()
}
