// Package fetcher pages through the Cloudinary resource listing and
// aggregates every page into one ordered slice.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/kataras/cloudinary-source/pkg/cloudinary"
)

// ErrCursorLoop is reported when the API hands back the cursor that was just requested.
var ErrCursorLoop = errors.New("fetcher: API returned the same next_cursor twice")

// ErrMaxPages is reported when the page limit is reached while more pages remain.
var ErrMaxPages = errors.New("fetcher: page limit reached")

// Lister issues a single page request. *cloudinary.Client implements it.
type Lister interface {
	ListResources(ctx context.Context, opts cloudinary.ListOptions) (*cloudinary.ResourcesResponse, error)
}

// Result is the outcome of FetchAll.
//
// Resources holds everything fetched before the run stopped, in page order.
// Err is nil when the last page was reached or the listing was empty;
// otherwise it explains why fetching stopped early and Resources is partial.
type Result struct {
	Resources []cloudinary.Resource
	Pages     int
	// Empty is set when a page came back with no resources.
	Empty bool
	Err   error
}

// OK reports whether the whole listing was read.
func (r Result) OK() bool { return r.Err == nil }

// Option customises FetchAll.
type Option func(*config)

type config struct {
	maxPages int
	onPage   func(page int, resp *cloudinary.ResourcesResponse)
}

// WithMaxPages stops after n pages. Zero means no limit.
func WithMaxPages(n int) Option { return func(c *config) { c.maxPages = n } }

// WithPageHook calls fn after each successful page request.
func WithPageHook(fn func(page int, resp *cloudinary.ResourcesResponse)) Option {
	return func(c *config) { c.onPage = fn }
}

// FetchAll requests opts, then keeps requesting the page named by each
// response's next_cursor until a page has none. Requests are sequential.
//
// A failed request, an empty page, a repeated cursor or the page limit ends
// the loop; see Result for how each case is reported.
func FetchAll(ctx context.Context, l Lister, opts cloudinary.ListOptions, options ...Option) Result {
	var cfg config
	for _, o := range options {
		o(&cfg)
	}

	var res Result
	cursor := opts.NextCursor
	for {
		if cfg.maxPages > 0 && res.Pages >= cfg.maxPages {
			res.Err = fmt.Errorf("%w (%d)", ErrMaxPages, cfg.maxPages)
			return res
		}

		resp, err := l.ListResources(ctx, opts.WithCursor(cursor))
		if err != nil {
			res.Err = fmt.Errorf("fetch page %d: %w", res.Pages+1, err)
			return res
		}
		res.Pages++

		if cfg.onPage != nil {
			cfg.onPage(res.Pages, resp)
		}

		if resp == nil || len(resp.Resources) == 0 {
			res.Empty = true
			return res
		}

		res.Resources = append(res.Resources, resp.Resources...)

		if !resp.HasMore() {
			return res
		}
		if resp.NextCursor == cursor {
			res.Err = fmt.Errorf("%w: %q", ErrCursorLoop, cursor)
			return res
		}
		cursor = resp.NextCursor
	}
}
