package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transform/internal/config"
	"transform/internal/metrics"
	"transform/internal/metrics/datadog"
	"transform/internal/metrics/prompush"

	// register the compiled-in function modules and output destinations.
	// the transform file selects which to use but support for all of them
	// must be built in.
	_ "transform/internal/registry/builtin"
	_ "transform/internal/storage/all"
)

// main is the entry point for the transform binary. It loads the transform
// file, applies command line file overrides, optionally initializes a metrics
// backend, and executes the run.
func main() {
	var (
		transformPath     string
		inputArg          string
		outputArg         string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
		quiet             bool
	)

	flag.StringVar(&transformPath, "transform", "", "transform file JSON path (required)")
	flag.StringVar(&inputArg, "input", "", `comma separated input filenames overriding the transform file positionally ("_" keeps a position)`)
	flag.StringVar(&outputArg, "output", "", `comma separated output filenames overriding the transform file positionally ("_" keeps a position)`)
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the transform file and exit")
	flag.BoolVar(&quiet, "q", false, "suppress informational logs")

	flag.Parse()

	if transformPath == "" {
		fatalf("-transform is required")
	}

	f, err := os.Open(transformPath)
	if err != nil {
		fatalf("open transform file: %v", err)
	}
	var cfg config.Config
	err = json.NewDecoder(f).Decode(&cfg)
	f.Close()
	if err != nil {
		fatalf("decode transform file: %v", err)
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("transform file is invalid: %v", transformPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("transform file is valid: %v", transformPath)
		os.Exit(0)
	}

	if cfg.InputFiles, err = config.ApplyInputOverrides(cfg.InputFiles, inputArg); err != nil {
		fatalf("%v", err)
	}
	if cfg.OutputFiles, err = config.ApplyOutputOverrides(cfg.OutputFiles, outputArg); err != nil {
		fatalf("%v", err)
	}

	job := jobName(transformPath)
	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, job, quiet)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if err := run(ctx, job, cfg, quiet); err != nil {
		log.Fatalf("%v", err)
	}

	if !quiet {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// jobName derives a metrics job label from the transform filename.
func jobName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "transform"
	}
	return base
}

// setupMetrics installs the selected metrics backend: flag, then environment,
// then disabled. A backend that fails to initialize logs and falls back to
// the nop backend rather than aborting the run.
func setupMetrics(backendName, gwURL, ddAddr, job string, quiet bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		if !quiet {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job)
		}
		metrics.SetBackend(b)

	case "datadog":
		if ddAddr == "" {
			ddAddr = os.Getenv("DOGSTATSD_ADDR")
		}
		if ddAddr == "" {
			ddAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       ddAddr,
			Namespace:  "transform.",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		if !quiet {
			log.Printf("metrics: addr=%v, backend=%v, job_name=%v", ddAddr, backendName, job)
		}
		metrics.SetBackend(b)

	case "", "none":
		if !quiet {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
