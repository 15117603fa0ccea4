// Command ringinspect is an interactive shell for experimenting with
// ring buffers: it shows how each operation moves the live run around
// the block and when clones stop sharing storage.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aradilov/ringbuffer"
	"github.com/aradilov/ringbuffer/internal/logging"
	"github.com/aradilov/ringbuffer/internal/repl"
)

func main() {
	var (
		history     = flag.String("history", "", "file to keep command history in")
		pool        = flag.Bool("pool", false, "allocate blocks from a recycling pool")
		poolDepth   = flag.Int("pool-depth", ringbuffer.DefaultPoolDepth, "idle blocks kept per size class")
		metricsAddr = flag.String("metrics", "", "serve pool metrics on this address, e.g. :9100")
		logLevel    = flag.String("log-level", "warn", "debug, info, warn or error")
		logFormat   = flag.String("log-format", "text", "text or json")
	)
	flag.Parse()

	log, err := logging.New(os.Stderr, logging.Config{Level: *logLevel, Format: *logFormat})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var alloc *ringbuffer.PoolAllocator[string]
	if *pool {
		alloc = ringbuffer.NewPoolAllocator[string](ringbuffer.PoolConfig{Depth: *poolDepth})
		if *metricsAddr != "" {
			serveMetrics(log, *metricsAddr, alloc)
		}
	}

	r := repl.New(log)
	newInspector(alloc, log).register(r)

	log.Info("starting", "pool", *pool)
	if err := r.Run(repl.Config{HistoryFile: *history}); err != nil {
		log.Error("repl stopped", "error", err)
		os.Exit(1)
	}
}

func serveMetrics(log *slog.Logger, addr string, alloc *ringbuffer.PoolAllocator[string]) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(alloc.Collector("ringinspect", "inspector"))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)
}
