// Package ogtags fetches pages, pulls their title, description and preview
// image out of <meta> tags and memoizes the result per URL.
package ogtags

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tetralog/opengraph"
	"github.com/tetralog/opengraph/lib/config"
	"github.com/tetralog/opengraph/lib/store"
	"golang.org/x/sync/singleflight"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opengraph_cache_lookups_total",
		Help: "The number of Open Graph cache lookups by result",
	}, []string{"result"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "opengraph_fetch_duration_seconds",
		Help:    "Time spent fetching and parsing pages",
		Buckets: prometheus.DefBuckets,
	})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opengraph_fetch_failures_total",
		Help: "The number of page fetches that failed, by reason",
	}, []string{"reason"})
)

// OGData is the metadata extracted from one page. Fields that could not be
// found are empty strings.
type OGData struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Image string `json:"image"`
}

type OGTagCache struct {
	cache            *store.JSON[OGData]
	client           *http.Client
	group            singleflight.Group
	ogTimeToLive     time.Duration
	maxContentLength int64
	userAgent        string
}

// NewOGTagCache creates a cache that keeps results in backend. Values in conf
// are expected to have passed config.OpenGraph.Valid.
func NewOGTagCache(conf config.OpenGraph, backend store.Interface) *OGTagCache {
	maxContentLength := conf.MaxContentLength
	if maxContentLength <= 0 {
		maxContentLength = config.DefaultMaxContentLength
	}

	userAgent := conf.UserAgent
	if userAgent == "" {
		userAgent = opengraph.DefaultUserAgent
	}

	return &OGTagCache{
		cache: &store.JSON[OGData]{
			Underlying: backend,
			Prefix:     "og:",
		},
		client: &http.Client{
			Timeout: conf.FetchTimeout,
		},
		ogTimeToLive:     conf.TimeToLive,
		maxContentLength: maxContentLength,
		userAgent:        userAgent,
	}
}
