package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-scout/internal/client"
	"github.com/23skdu/longbow-scout/internal/diag"
)

// watchLoop re-probes at a fixed interval for the given duration. The
// first probe prints the normal diagnostic output; subsequent probes are
// silent and only logged/pushed. Pushes go through a circuit breaker so a
// down server is skipped, not hammered.
func watchLoop(opts diag.Options, fc *client.FlightClient, duration, interval time.Duration) {
	log.Info().
		Str("duration", duration.String()).
		Str("interval", interval.String()).
		Msg("Starting watch mode")

	breaker := client.NewCircuitBreaker(5, 30*time.Second)

	startTime := time.Now()
	endTime := startTime.Add(duration)
	var iter, pushed, skipped int

	for {
		rep, err := diag.Run(context.Background(), opts)
		if err != nil {
			log.Fatal().Err(err).Msg("Diagnostic failed")
		}
		iter++
		opts.Out = io.Discard // only the first probe prints

		if fc != nil {
			if breaker.Allow() {
				if err := pushOnce(fc, rep); err != nil {
					breaker.Failure()
					log.Warn().Err(err).Msg("Push failed")
				} else {
					breaker.Success()
					pushed++
				}
			} else {
				skipped++
			}
		}

		log.Info().
			Int("iter", iter).
			Bool("cuda_available", rep.CUDAAvailable).
			Int("devices", rep.DeviceCount).
			Int("pushed", pushed).
			Int("skipped", skipped).
			Str("elapsed", time.Since(startTime).Round(time.Second).String()).
			Msg("Probe complete")

		if !time.Now().Add(interval).Before(endTime) {
			break
		}
		time.Sleep(interval)
	}

	log.Info().
		Int("iterations", iter).
		Int("pushed", pushed).
		Int("skipped", skipped).
		Dur("total_time", time.Since(startTime)).
		Msg("Watch mode complete")
}

func pushOnce(fc *client.FlightClient, rep *diag.Report) error {
	rec, err := reportRecord(rep)
	if err != nil {
		return err
	}
	defer rec.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return fc.DoPut(ctx, *flagDataset, rec)
}
