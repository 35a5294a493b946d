package lib

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tetralog/opengraph/internal"
	"github.com/tetralog/opengraph/internal/ogtags"
)

var requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "opengraph_requests_total",
	Help: "The number of Open Graph API requests by result",
}, []string{"result"})

type Server struct {
	mux    *http.ServeMux
	OGTags *ogtags.OGTagCache
	opts   Options
}

// ServeOpenGraph answers GET /api/opengraph?url=... with the title,
// description and image of the page at url.
//
// Checks run in a fixed order: the Origin header first, then the url
// parameter, then the cache, and only then the network.
func (s *Server) ServeOpenGraph(w http.ResponseWriter, r *http.Request) {
	lg := internal.GetRequestLogger(r)

	w.Header().Add("Vary", "Origin")

	origin := r.Header.Get("Origin")
	if !s.opts.Config.AllowedOrigins.Allowed(origin) {
		requests.WithLabelValues("forbidden").Inc()
		lg.Debug("origin not allowed")
		respondWithStatus(w, "Forbidden", http.StatusForbidden)
		return
	}

	u := urlSearchParam(r.URL.RawQuery, "url")
	if u == "" {
		requests.WithLabelValues("bad_request").Inc()
		lg.Debug("no url parameter")
		respondWithStatus(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data, err := s.OGTags.GetOGData(r.Context(), u)
	if err != nil {
		requests.WithLabelValues("error").Inc()
		lg.Error("can't get Open Graph data", "target", u, "err", err)
		respondWithStatus(w, "Error fetching Open Graph data", http.StatusInternalServerError)
		return
	}

	s.writeOGData(w, r, origin, data)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
