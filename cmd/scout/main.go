package main

import (
	"context"
	"flag"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/23skdu/longbow-scout/internal/client"
	"github.com/23skdu/longbow-scout/internal/diag"
)

var (
	flagEnv        = flag.Bool("env", false, "Print environment snapshot before the probe")
	flagStress     = flag.Bool("stress", false, "Run a matmul stress check after the probe")
	flagStressSize = flag.Int("stress-size", 256, "Stress matrix edge size")
	flagSeed       = flag.Int64("seed", 0, "Random fill seed (0 = time-based)")
	flagReport     = flag.String("report", "", "Write the CBOR report to this file")
	flagArrow      = flag.Bool("arrow", false, "Write the report as an Arrow IPC stream to stdout")
	flagServer     = flag.String("server", "", "Longbow server address to push reports to (e.g., localhost:3000)")
	flagDataset    = flag.String("dataset", "scout_reports", "Target dataset name on server")
	flagWatch      = flag.Duration("watch", 0, "Keep probing for the specified duration (e.g. 10m, 2h)")
	flagInterval   = flag.Duration("interval", 30*time.Second, "Probe interval in watch mode")
	flagMetrics    = flag.String("metrics", "", "Address to serve Prometheus metrics on (e.g. :9100)")
	enableOTel     = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
	cpuProfile     = flag.String("cpuprofile", "", "Write cpu profile to file")
)

func main() {
	// Initialize logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	flag.Parse()

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer shutdown(context.Background())
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create CPU profile file")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("Could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	if *flagMetrics != "" {
		go startMetricsServer(*flagMetrics)
	}

	var fc *client.FlightClient
	if *flagServer != "" {
		var err error
		fc, err = client.NewFlightClient(*flagServer)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create flight client")
		}
		defer func() {
			if err := fc.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close flight client")
			}
		}()
		log.Info().Str("addr", *flagServer).Msg("Connected to Longbow")
	}

	opts := diag.Options{
		Out:        os.Stdout,
		Seed:       *flagSeed,
		Env:        *flagEnv,
		Stress:     *flagStress,
		StressSize: *flagStressSize,
	}

	if *flagWatch > 0 {
		watchLoop(opts, fc, *flagWatch, *flagInterval)
		return
	}

	rep, err := diag.Run(context.Background(), opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Diagnostic failed")
	}

	if err := emitReport(rep, fc); err != nil {
		log.Fatal().Err(err).Msg("Failed to emit report")
	}
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("scout"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
