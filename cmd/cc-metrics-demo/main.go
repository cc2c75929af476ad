// cc-metrics-demo consolidates the library's example programs into one
// binary with subcommands, the way cmd/cc-backend consolidates every
// operational concern (server, migrations, user management) behind one set
// of top-level flags. Grounded on cmd/cc-backend/main.go for flag parsing
// and the -gops debug toggle; it loads no .env file and reads no config
// file.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/graphite"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/maps"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/promtext"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/stdout"
	"github.com/google/gops/agent"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
)

func main() {
	var flagGops bool
	var flagDryRun bool
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.BoolVar(&flagDryRun, "dry-run", false, "record into an in-memory output instead of writing to stdout/network, printing a snapshot on exit")
	flag.Usage = usage
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	sub := os.Args[1]
	flag.CommandLine.Parse(os.Args[2:])

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch sub {
	case "aggregate":
		runAggregate(ctx, flagDryRun)
	case "async":
		runAsync(ctx)
	case "cache":
		runCache(ctx)
	case "graphite":
		runGraphite(ctx)
	case "labels":
		runLabels(ctx)
	case "serve":
		runServe(ctx)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cc-metrics-demo <aggregate|async|cache|graphite|labels|serve> [-gops] [-dry-run]")
}

// runAggregate mirrors examples/aggregate.rs: a Bucket continuously
// aggregating four kinds of metrics, flushed to stdout on a schedule. With
// -dry-run, the same writes are recorded into an in-memory
// output/maps.Output instead, and a snapshot is printed on exit rather than
// flushed continuously — useful for scripted smoke tests that don't want to
// scrape stdout mid-run.
func runAggregate(ctx context.Context, dryRun bool) {
	bucket := metrics.NewBucket()

	var recorded *maps.Output
	if dryRun {
		recorded = maps.New()
		bucket.SetTarget(recorded)
	} else {
		bucket.SetTarget(metrics.NewDirectLineOutput(stdout.New(), metrics.DefaultFormat))
	}

	sched, err := metrics.NewScheduler()
	if err != nil {
		cclog.Fatalf("aggregate: %v", err)
	}
	cancelFlush, err := sched.FlushEvery(3*time.Second, bucket)
	if err != nil {
		cclog.Fatalf("aggregate: %v", err)
	}
	defer cancelFlush()

	counter := metrics.NewCounter(bucket, metrics.NewMetricName("counter_a"))
	timer := metrics.NewTimer(bucket, metrics.NewMetricName("timer_a"))
	gauge := metrics.NewGauge(bucket, metrics.NewMetricName("gauge_a"))
	marker := metrics.NewMarker(bucket, metrics.NewMetricName("marker_a"))

	for {
		select {
		case <-ctx.Done():
			if dryRun {
				bucket.Flush()
				for _, name := range recorded.Names() {
					if last, ok := recorded.Last(name); ok {
						fmt.Printf("%s last=%v kind=%s\n", name, last.Value, last.Kind)
					}
				}
			}
			return
		default:
		}
		counter.Add(ctx, 11, nil)
		counter.Add(ctx, 12, nil)
		counter.Add(ctx, 13, nil)
		timer.RecordMicros(ctx, 11_000_000, nil)
		timer.RecordMicros(ctx, 12_000_000, nil)
		timer.RecordMicros(ctx, 13_000_000, nil)
		gauge.Set(ctx, 11, nil)
		gauge.Set(ctx, 12, nil)
		gauge.Set(ctx, 13, nil)
		marker.Mark(ctx, nil)
		time.Sleep(100 * time.Millisecond)
	}
}

// runAsync mirrors examples/async.rs: writes go through a bounded queue to
// a stdout sink instead of blocking the caller on I/O.
func runAsync(ctx context.Context) {
	direct := metrics.NewDirectLineOutput(stdout.New(), metrics.DefaultFormat)
	queued := metrics.NewQueuedOutput(direct, 10)
	defer queued.Close()

	input := metrics.NewSyncInput(queued)
	prefixed := metrics.Prefix(input, "subsystem")

	counter := metrics.NewCounter(input, metrics.NewMetricName("counter_a"))
	timer := metrics.NewTimer(input, metrics.NewMetricName("timer_b"))
	event := metrics.NewMarker(prefixed, metrics.NewMetricName("event_c"))
	gauge := metrics.NewGauge(prefixed, metrics.NewMetricName("gauge_d"))
	adHoc := metrics.NewCounter(input, metrics.NewMetricName("ad_hoc"))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		counter.Add(ctx, 11, nil)
		gauge.Set(ctx, 22, nil)
		adHoc.Add(ctx, 4, nil)
		event.Mark(ctx, nil)
		start := time.Now()
		time.Sleep(5 * time.Millisecond)
		timer.RecordMicros(ctx, uint64(time.Since(start).Microseconds()), nil)
	}
}

// runCache mirrors examples/cache.rs: repeated ad-hoc lookups by name are
// served from a small LRU instead of re-resolving a handle every write.
func runCache(ctx context.Context) {
	direct := metrics.NewDirectLineOutput(stdout.New(), metrics.DefaultFormat)
	input := metrics.NewSyncInput(direct)
	cached := metrics.NewCachedInput(input, 5)
	prefixed := metrics.Prefix(cached, "cache")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		metrics.NewCounter(prefixed, metrics.NewMetricName("blorf")).Add(ctx, 1134, nil)
		metrics.NewMarker(prefixed, metrics.NewMetricName("burg")).Mark(ctx, nil)
		time.Sleep(500 * time.Millisecond)
	}
}

// runGraphite mirrors examples/graphite.rs: ad-hoc metrics streamed to a
// Carbon-plaintext listener.
func runGraphite(ctx context.Context) {
	sink, conn := graphite.New("localhost:2003", clockwork.NewRealClock())
	defer conn.Close()
	input := metrics.NewSyncInput(sink)
	prefixed := metrics.Prefix(input, "my_app")

	counter := metrics.NewCounter(prefixed, metrics.NewMetricName("counter_a"))
	timer := metrics.NewTimer(prefixed, metrics.NewMetricName("timer_a"))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		counter.Add(ctx, 123, nil)
		timer.RecordMicros(ctx, 2_000_000, nil)
		time.Sleep(40 * time.Millisecond)
	}
}

// runLabels mirrors examples/text_format_label.rs: a custom LineFormat
// that elides a label template fragment entirely when the label is unset.
func runLabels(ctx context.Context) {
	tmpl := metrics.Template{Ops: []metrics.LineOp{
		metrics.NameAsText{Sep: "."},
		metrics.Literal(" "),
		metrics.ValueAsText{},
		metrics.Literal(" "),
		metrics.LabelExists{Key: "abc", Sub: []metrics.LineOp{
			metrics.LabelKey{},
			metrics.Literal(":"),
			metrics.LabelValue{},
		}},
		metrics.NewLine{},
	}}
	direct := metrics.NewDirectLineOutput(stdout.New(), tmpl)
	input := metrics.NewSyncInput(direct)
	counter := metrics.NewCounter(input, metrics.NewMetricName("counter_a"))

	metrics.SetGlobalLabel("abc", "xyz")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		counter.Add(ctx, 11, nil)
		time.Sleep(200 * time.Millisecond)
	}
}

// runServe exposes a standing admin HTTP surface: /metrics for Prometheus
// scraping and /debug/buckets as a plain-text snapshot, grounded on
// cmd/cc-backend/server.go's gorilla/mux + gorilla/handlers router setup.
func runServe(ctx context.Context) {
	bucket := metrics.NewBucket()
	registry := promtext.New()
	bucket.SetTarget(registry)

	sched, err := metrics.NewScheduler()
	if err != nil {
		cclog.Fatalf("serve: %v", err)
	}
	cancelFlush, err := sched.FlushEvery(10*time.Second, bucket)
	if err != nil {
		cclog.Fatalf("serve: %v", err)
	}
	defer cancelFlush()

	router := mux.NewRouter()
	router.Handle("/metrics", registry.Handler())
	router.HandleFunc("/debug/buckets", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "tracked metrics: %d\n", bucket.Len())
	})
	router.Use(handlers.CompressHandler)
	router.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))

	srv := &http.Server{Addr: ":8090", Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	cclog.Infof("cc-metrics-demo: serving on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		cclog.Fatalf("serve: %v", err)
	}
}
