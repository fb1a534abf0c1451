package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-scout/internal/diag"
)

func TestWriteReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.cbor")

	rep := &diag.Report{
		Version:       "scout-device 0.4.2 (test)",
		CUDAAvailable: false,
		DeviceCount:   0,
		Hostname:      "node-1",
	}
	require.NoError(t, writeReportFile(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded diag.Report
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, rep.Version, decoded.Version)
	assert.Equal(t, rep.Hostname, decoded.Hostname)
	assert.False(t, decoded.CUDAAvailable)
}

func TestWriteArrowStream(t *testing.T) {
	rec, err := reportRecord(&diag.Report{
		Version:       "scout-device 0.4.2 (test)",
		CUDAAvailable: true,
		DeviceCount:   1,
		Hostname:      "node-2",
		Tensor: &diag.TensorDump{
			Rows: 2, Cols: 3, Device: "CUDA",
			Values: []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
		},
	})
	require.NoError(t, err)
	defer rec.Release()

	var buf bytes.Buffer
	require.NoError(t, writeArrowStream(&buf, rec))

	reader, err := ipc.NewReader(&buf)
	require.NoError(t, err)
	defer reader.Release()

	require.True(t, reader.Next())
	got := reader.Record()
	assert.Equal(t, int64(1), got.NumRows())
	assert.Equal(t, int64(6), got.NumCols())
	assert.False(t, reader.Next())
}
