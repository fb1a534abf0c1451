package client

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-scout/internal/diag"
)

type mockFlightServer struct {
	flight.BaseFlightServer
	recordsReceived []arrow.Record
}

func (s *mockFlightServer) DoPut(server flight.FlightService_DoPutServer) error {
	for {
		batch, err := server.Recv()
		if err != nil {
			return nil
		}

		record, err := flight.NewRecordReader(server)
		if err != nil {
			return err
		}

		for record.Next() {
			rec := record.Record()
			rec.Retain()
			s.recordsReceived = append(s.recordsReceived, rec)
		}

		_ = batch // Descriptor could be checked here if needed
	}
}

func TestFlightClient_DoPut(t *testing.T) {
	// Start a mock flight server
	mockServer := &mockFlightServer{}
	server := flight.NewServerWithMiddleware(nil)
	server.RegisterFlightService(mockServer)

	err := server.Init("localhost:0")
	require.NoError(t, err)
	addr := server.Addr().String()

	go func() {
		_ = server.Serve()
	}()
	defer server.Shutdown()

	cl, err := NewFlightClient(addr)
	require.NoError(t, err)
	defer cl.Close()

	builder := NewRecordBuilder(memory.NewGoAllocator())
	rb, err := builder.Build(&diag.Report{
		Version:  "scout-device 0.4.2 (test)",
		Hostname: "node-9",
	})
	require.NoError(t, err)
	defer rb.Release()

	err = cl.DoPut(context.Background(), "scout_reports", rb)
	assert.NoError(t, err)
}
