package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-scout/internal/client"
	"github.com/23skdu/longbow-scout/internal/diag"
)

// emitReport fans a finished report out to the configured sinks: CBOR
// file, Arrow IPC on stdout, and/or a Longbow server via Flight.
func emitReport(rep *diag.Report, fc *client.FlightClient) error {
	if *flagReport != "" {
		if err := writeReportFile(*flagReport, rep); err != nil {
			return err
		}
		log.Info().Str("path", *flagReport).Msg("Wrote CBOR report")
	}

	if !*flagArrow && fc == nil {
		return nil
	}

	rec, err := reportRecord(rep)
	if err != nil {
		return err
	}
	defer rec.Release()

	if *flagArrow {
		if err := writeArrowStream(os.Stdout, rec); err != nil {
			return err
		}
	}

	if fc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := fc.DoPut(ctx, *flagDataset, rec); err != nil {
			return err
		}
		log.Info().Str("dataset", *flagDataset).Msg("Pushed report to Longbow")
	}

	return nil
}

func reportRecord(rep *diag.Report) (arrow.RecordBatch, error) {
	builder := client.NewRecordBuilder(memory.NewGoAllocator())
	return builder.Build(rep)
}

func writeReportFile(path string, rep *diag.Report) error {
	data, err := cbor.Marshal(rep)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeArrowStream(w io.Writer, rec arrow.RecordBatch) error {
	writer := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()))
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}
