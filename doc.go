// Package cloudinarysource sources Cloudinary media assets into a content
// graph. It lists resources through the Cloudinary Admin API, follows
// next_cursor until the listing ends, optionally splices a delivery
// transformation into every asset URL and registers one CloudinaryMedia
// node per asset with the host graph.
//
// The CLI lives in cmd/cloudinary-source; this root package exposes the same
// pipeline as a Go API for build tools that own their content graph.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named cloudinarysource:
//
//	import "github.com/kataras/cloudinary-source" // package cloudinarysource
//
// # Quick start
//
//	cloud, _ := cloudinary.ParseURL(os.Getenv("CLOUDINARY_URL"))
//	host := graph.NewMemory()
//	result, err := cloudinarysource.Run(ctx, host, cloudinarysource.Options{
//	    Cloud:           cloud,
//	    Query:           cloudinarysource.DefaultQueryOptions(),
//	    Transformations: "w_300,c_fill",
//	})
//	if err != nil {
//	    log.Printf("sourcing stopped after %d node(s): %v", result.Nodes, err)
//	}
//
// # Host graph
//
// Any [node.Host] can receive the nodes. Package graph ships an in-memory
// graph, a JSON writer, an SQLite store and a fan-out. Embed [node.Helpers]
// to get the default UUIDv5 ids and MD5 content digests.
//
// # Failures
//
// A failed page request stops pagination. The resources fetched before it
// are still registered, the [Source] ends in StateFailed and the error is
// returned next to the [Result]. An empty listing is not an error; it is
// logged as a warning and the run ends in StateDone with zero nodes.
//
// # Transformations
//
// By default the transformation is inserted as the 7th slash-separated
// segment of url and secure_url, right after the delivery type of a
// standard delivery URL. Set [Options.TransformMode] to
// transform.ModePathAware to parse the path instead and fail on URLs of an
// unexpected shape.
package cloudinarysource
