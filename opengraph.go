// Package opengraph holds values shared by every part of the Open Graph
// fetch service.
package opengraph

// Version is the current version of the service, set with -ldflags at build
// time.
var Version = "devel"

// APIPath is the path the fetch endpoint is mounted at, below the base prefix.
const APIPath = "/api/opengraph"

// DefaultUserAgent is sent on outbound page fetches unless configured otherwise.
var DefaultUserAgent = "opengraph-fetcher/" + Version
