package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/facebookgo/flagenv"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tetralog/opengraph"
	"github.com/tetralog/opengraph/internal"
	libopengraph "github.com/tetralog/opengraph/lib"
	"github.com/tetralog/opengraph/lib/config"
)

var (
	allowedOrigins     = flag.String("allowed-origins", "", "if set, comma-separated list of Origin header values allowed to call the API, replacing the ones in the config file")
	basePrefix         = flag.String("base-prefix", "", "base prefix (root URL) the application is served under e.g. /myapp")
	bind               = flag.String("bind", ":8923", "network address to bind HTTP to")
	bindNetwork        = flag.String("bind-network", "tcp", "network family to bind HTTP to, e.g. unix, tcp")
	configFname        = flag.String("config-fname", "", "full path to the configuration file (defaults to a sensible built-in configuration)")
	gzipLevel          = flag.Int("gzip-level", 1, "gzip compression level for responses, 0 disables compression")
	healthcheck        = flag.Bool("healthcheck", false, "run a health check against the metrics server and exit")
	metricsBind        = flag.String("metrics-bind", ":9090", "network address to bind metrics to")
	metricsBindNetwork = flag.String("metrics-bind-network", "tcp", "network family for the metrics server to bind to")
	ogFetchTimeout     = flag.Duration("og-fetch-timeout", 0, "if set, timeout for fetching a page, overriding the config file")
	ogTimeToLive       = flag.Duration("og-expiry-time", 0, "if set, how long fetched Open Graph data is cached, overriding the config file")
	runtimeName        = flag.String("runtime", "", "if set, deployment runtime (node or edge), overriding the config file")
	slogLevel          = flag.String("slog-level", "INFO", "logging level (see https://pkg.go.dev/log/slog#hdr-Levels)")
	socketMode         = flag.String("socket-mode", "0770", "socket mode (permissions) for unix domain sockets.")
	useRemoteAddress   = flag.Bool("use-remote-address", false, "read the client's IP address from the network request instead of X-Forwarded-For, useful when the service is not behind a proxy")
	versionFlag        = flag.Bool("version", false, "print version")
)

func doHealthCheck() error {
	resp, err := http.Get("http://localhost" + *metricsBind + "/metrics")
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// parseBindNetFromAddr determine bind network and address based on the given network and address.
func parseBindNetFromAddr(address string) (string, string) {
	defaultScheme := "http://"
	if !strings.Contains(address, "://") {
		if strings.HasPrefix(address, ":") {
			address = defaultScheme + "localhost" + address
		} else {
			address = defaultScheme + address
		}
	}

	bindUri, err := url.Parse(address)
	if err != nil {
		log.Fatal(fmt.Errorf("failed to parse bind URL: %w", err))
	}

	switch bindUri.Scheme {
	case "unix":
		return "unix", bindUri.Path
	case "tcp", "http", "https":
		return "tcp", bindUri.Host
	default:
		log.Fatal(fmt.Errorf("unsupported network scheme %s in address %s", bindUri.Scheme, address))
	}
	return "", address
}

func setupListener(network string, address string) (net.Listener, string) {
	formattedAddress := ""

	if network == "" {
		network, address = parseBindNetFromAddr(address)
	}

	switch network {
	case "unix":
		formattedAddress = "unix:" + address
	case "tcp":
		if strings.HasPrefix(address, ":") { // assume it's just a port e.g. :4259
			formattedAddress = "http://localhost" + address
		} else {
			formattedAddress = "http://" + address
		}
	default:
		formattedAddress = fmt.Sprintf(`(%s) %s`, network, address)
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		log.Fatal(fmt.Errorf("failed to bind to %s: %w", formattedAddress, err))
	}

	// additional permission handling for unix sockets
	if network == "unix" {
		mode, err := strconv.ParseUint(*socketMode, 8, 0)
		if err != nil {
			listener.Close()
			log.Fatal(fmt.Errorf("could not parse socket mode %s: %w", *socketMode, err))
		}

		err = os.Chmod(address, os.FileMode(mode))
		if err != nil {
			err := listener.Close()
			if err != nil {
				log.Printf("failed to close listener: %v", err)
			}
			log.Fatal(fmt.Errorf("could not change socket mode: %w", err))
		}
	}

	return listener, formattedAddress
}

// applyFlagOverrides copies flags that were set onto c. Flags win over the
// config file.
func applyFlagOverrides(c *config.Config) {
	if *allowedOrigins != "" {
		var origins config.Origins
		for origin := range strings.SplitSeq(*allowedOrigins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		c.AllowedOrigins = origins
	}

	if *runtimeName != "" {
		c.Runtime = config.Runtime(*runtimeName)
	}

	if *ogTimeToLive != 0 {
		c.OpenGraph.TimeToLive = *ogTimeToLive
	}

	if *ogFetchTimeout != 0 {
		c.OpenGraph.FetchTimeout = *ogFetchTimeout
	}
}

func main() {
	flagenv.Parse()
	flag.Parse()

	if *versionFlag {
		fmt.Println("opengraph", opengraph.Version)
		return
	}

	internal.InitSlog(*slogLevel)

	if *healthcheck {
		log.Println("running healthcheck")
		if err := doHealthCheck(); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *basePrefix != "" && !strings.HasPrefix(*basePrefix, "/") {
		log.Fatalf("[misconfiguration] base-prefix must start with a slash, eg: /%s", *basePrefix)
	} else if strings.HasSuffix(*basePrefix, "/") {
		log.Fatalf("[misconfiguration] base-prefix must not end with a slash")
	}

	conf, err := libopengraph.LoadConfigOrDefault(*configFname)
	if err != nil {
		log.Fatalf("can't load config: %v", err)
	}

	applyFlagOverrides(conf)

	if err := conf.Valid(); err != nil {
		log.Fatalf("[misconfiguration] %v", err)
	}

	wg := new(sync.WaitGroup)
	// install signal handler
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := libopengraph.New(ctx, libopengraph.Options{
		Config:     conf,
		BasePrefix: *basePrefix,
	})
	if err != nil {
		log.Fatalf("can't construct lib.Server: %v", err)
	}

	if *metricsBind != "" {
		wg.Add(1)
		go metricsServer(ctx, wg.Done)
	}

	var h http.Handler
	h = s
	if *gzipLevel != 0 {
		h = internal.GzipMiddleware(*gzipLevel, h)
	}
	h = internal.RealIP(!*useRemoteAddress, h)

	srv := http.Server{Handler: h, ErrorLog: internal.GetFilteredHTTPLogger()}
	listener, listenerUrl := setupListener(*bindNetwork, *bind)
	slog.Info(
		"listening",
		"url", listenerUrl,
		"version", opengraph.Version,
		"base-prefix", *basePrefix,
		"allowed-origins", conf.AllowedOrigins,
		"runtime", conf.Runtime,
		"store", conf.Store.Backend,
		"og-expiry-time", conf.OpenGraph.TimeToLive,
		"og-fetch-timeout", conf.OpenGraph.FetchTimeout,
		"use-remote-address", *useRemoteAddress,
	)

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			log.Printf("cannot shut down: %v", err)
		}
	}()

	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	wg.Wait()
}

func metricsServer(ctx context.Context, done func()) {
	defer done()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := http.Server{Handler: mux, ErrorLog: internal.GetFilteredHTTPLogger()}
	listener, metricsUrl := setupListener(*metricsBindNetwork, *metricsBind)
	slog.Debug("listening for metrics", "url", metricsUrl)

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			log.Printf("cannot shut down: %v", err)
		}
	}()

	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
