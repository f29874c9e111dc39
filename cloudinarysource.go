package cloudinarysource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kataras/cloudinary-source/pkg/cloudinary"
	"github.com/kataras/cloudinary-source/pkg/fetcher"
	"github.com/kataras/cloudinary-source/pkg/node"
	"github.com/kataras/cloudinary-source/pkg/transform"
)

// ErrAlreadyRun is returned when SourceNodes is called on a Source that already ran.
var ErrAlreadyRun = errors.New("cloudinarysource: source already ran")

// Options configures a sourcing run.
type Options struct {
	Cloud           cloudinary.Config
	Query           QueryOptions
	Transformations string         // empty = keep delivery URLs as returned
	TransformMode   transform.Mode // default ModeFixedIndex
	MaxPages        int            // 0 = follow next_cursor until the end
	Logger          Logger         // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// State is the lifecycle state of a Source.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result summarises a sourcing run.
type Result struct {
	State     State
	Pages     int
	Resources int // fetched
	Nodes     int // registered with the host
	// Err is the reason the run failed, also returned by SourceNodes.
	Err error
}

// Source runs the fetch, transform and emit pipeline once.
type Source struct {
	opts   Options
	client fetcher.Lister

	mu    sync.Mutex
	state State
}

// NewSource builds the Admin API client from opts.Cloud.
func NewSource(opts Options) (*Source, error) {
	client, err := cloudinary.NewClient(opts.Cloud)
	if err != nil {
		return nil, err
	}
	return newSource(opts, client), nil
}

func newSource(opts Options, client fetcher.Lister) *Source {
	return &Source{opts: opts, client: client}
}

// State returns the current lifecycle state.
func (s *Source) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Source) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// SourceNodes fetches every resource matching the query, rewrites its URLs
// when a transformation is configured and registers one node per resource
// with host.
//
// When fetching stops early the resources fetched so far are still
// registered; the run ends in StateFailed and the reason is returned
// together with a populated Result so the caller can decide what to do.
func (s *Source) SourceNodes(ctx context.Context, host node.Host) (*Result, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	s.state = StateFetching
	s.mu.Unlock()

	opts := &s.opts
	result := &Result{State: StateFetching}

	fail := func(err error) (*Result, error) {
		opts.logError("%v", err)
		s.setState(StateFailed)
		result.State = StateFailed
		result.Err = err
		return result, err
	}

	query := opts.Query.ListOptions()
	opts.logInfo("Listing %s/%s resources...", query.ResourceType, query.Type)

	fetched := fetcher.FetchAll(ctx, s.client, query,
		fetcher.WithMaxPages(opts.MaxPages),
		fetcher.WithPageHook(func(page int, resp *cloudinary.ResourcesResponse) {
			if resp != nil {
				opts.logInfo("Page %d: %d resource(s)", page, len(resp.Resources))
			}
		}),
	)
	result.Pages = fetched.Pages
	result.Resources = len(fetched.Resources)

	if fetched.Empty && len(fetched.Resources) == 0 {
		opts.logWarn("No nodes created because no Cloudinary resources found. Try a different query?")
	}

	resources := fetched.Resources
	if opts.Transformations != "" {
		opts.logInfo("Applying transformation %q...", opts.Transformations)
		for i := range resources {
			if err := transform.Apply(&resources[i], opts.Transformations, opts.TransformMode); err != nil {
				return fail(fmt.Errorf("transform %q: %w", resources[i].PublicID(), err))
			}
		}
	}

	count, err := node.Emit(ctx, host, resources)
	result.Nodes = count
	if count > 0 {
		opts.logInfo("Added %d %s %s", count, node.Type, plural(count, "node", "nodes"))
	}
	if err != nil {
		return fail(fmt.Errorf("emit nodes: %w", err))
	}

	if !fetched.OK() {
		return fail(fetched.Err)
	}

	s.setState(StateDone)
	result.State = StateDone
	return result, nil
}

// Run creates a Source from opts and runs it against host.
func Run(ctx context.Context, host node.Host, opts Options) (*Result, error) {
	src, err := NewSource(opts)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return src.SourceNodes(ctx, host)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
