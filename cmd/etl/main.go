package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fragranceetl/internal/config"
	"fragranceetl/internal/metrics"
	"fragranceetl/internal/metrics/datadog"
	"fragranceetl/internal/metrics/prompush"

	// register all backends with the storage factory; import.kind picks one.
	_ "fragranceetl/internal/storage/all"
)

// Stages in execution order.
var stages = []string{"transform", "generate", "import"}

// main runs the fragrance ETL: raw CSV to normalized CSV, normalized CSV to
// SQL batch files, batch files into the target database.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run parses args, executes the selected stages and returns the exit code.
// getenv is os.Getenv outside tests.
func run(ctx context.Context, args []string, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath    string
		stage      string
		backend    string
		gatewayURL string
		envFile    string
		validate   bool
		verbose    bool
	)
	fs.StringVar(&cfgPath, "config", "configs/pipelines/fragrances.json", "pipeline config JSON path")
	fs.StringVar(&stage, "stage", "all", "stage to run: transform, generate, import or all")
	fs.StringVar(&backend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides env METRICS_BACKEND)")
	fs.StringVar(&gatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	selected, err := selectStages(stage)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(stderr, "env: %v\n", err)
		return 1
	}

	p, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	config.ApplyEnv(&p, getenv)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", cfgPath)
		return 1
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		return 0
	}

	flush := setupMetrics(p.JobName(), pick(backend, getenv("METRICS_BACKEND")), pick(gatewayURL, getenv("PUSHGATEWAY_URL")), getenv("DOGSTATSD_ADDR"), verbose)
	defer flush()

	start := time.Now()
	if verbose {
		log.Printf("pipeline: job=%s stages=%s source=%s output=%s batches=%s import=%s",
			p.JobName(), strings.Join(selected, ","), p.Source.File.Path, p.Output.Path, p.Batches.Dir, pick(p.Import.Kind, "cli"))
	}

	for _, s := range selected {
		if err := runStage(ctx, s, p); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", s, err)
			return 1
		}
	}

	if verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

func selectStages(stage string) ([]string, error) {
	if stage == "all" {
		return stages, nil
	}
	for _, s := range stages {
		if s == stage {
			return []string{s}, nil
		}
	}
	return nil, fmt.Errorf("unknown stage %q (want %s or all)", stage, strings.Join(stages, ", "))
}

func runStage(ctx context.Context, stage string, p config.Pipeline) error {
	switch stage {
	case "transform":
		return runTransform(ctx, p)
	case "generate":
		return runGenerate(ctx, p)
	case "import":
		_, err := runImport(ctx, p)
		return err
	}
	return fmt.Errorf("unknown stage %q", stage)
}

// setupMetrics installs the selected backend and returns its flush func.
// Backend init failures fall back to the no-op backend.
func setupMetrics(job, backend, gatewayURL, dogstatsdAddr string, verbose bool) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch backend {
	case "pushgateway":
		gatewayURL = pick(gatewayURL, "http://localhost:9091")
		b, err = prompush.NewBackend(job, gatewayURL)
		if err == nil {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gatewayURL, backend, job)
		}
	case "datadog":
		dogstatsdAddr = pick(dogstatsdAddr, "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      dogstatsdAddr,
			Namespace: "fragranceetl.",
			Tags:      []string{"job:" + job},
		})
		if err == nil {
			log.Printf("metrics: addr=%v, backend=%v", dogstatsdAddr, backend)
		}
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backend)
		}
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", backend, err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func pick(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
