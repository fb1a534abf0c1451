// Package diag implements the scout diagnostic probe: a strictly linear
// sequence that reports the device library version, CUDA availability and
// device count, and proves the GPU path by allocating a small random
// tensor on device 0.
package diag

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/23skdu/longbow-scout/internal/device"
)

var tracer = otel.Tracer("scout-diag")

// Seams for tests; production code never overrides these.
var (
	probe    = device.Probe
	newAccel = device.NewAccelBackend
)

// Default shape of the proof tensor, matching the smallest allocation that
// still exercises a non-square row-major layout.
const (
	tensorRows = 2
	tensorCols = 3
)

// Options configures a single probe run.
type Options struct {
	Out        io.Writer // defaults to os.Stdout
	Seed       int64     // random fill seed; 0 means time-based
	Env        bool      // print environment snapshot before the probe lines
	Stress     bool      // run the matmul stress check after the probe
	StressSize int       // stress matrix edge; 0 means 256
}

// TensorDump captures the proof tensor for the structured report.
type TensorDump struct {
	Rows   int       `cbor:"rows"`
	Cols   int       `cbor:"cols"`
	Device string    `cbor:"device"`
	Values []float32 `cbor:"values"`
}

// Report is the structured result of one probe run.
type Report struct {
	Version       string            `cbor:"version"`
	CUDAAvailable bool              `cbor:"cuda_available"`
	DeviceCount   int               `cbor:"device_count"`
	Devices       []device.Info     `cbor:"devices,omitempty"`
	Env           map[string]string `cbor:"env,omitempty"`
	Tensor        *TensorDump       `cbor:"tensor,omitempty"`
	Stress        *StressResult     `cbor:"stress,omitempty"`
	Hostname      string            `cbor:"hostname"`
	Timestamp     time.Time         `cbor:"timestamp"`
	ElapsedMs     int64             `cbor:"elapsed_ms"`
}

// Run executes the probe sequence. Output order on Out is fixed: version
// line, availability line, device count line, then - only when a GPU is
// available - a confirmation line and the tensor printout. There are no
// retries; any backend failure is returned as-is.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "diag.Run", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	hostname, _ := os.Hostname()
	rep := &Report{Hostname: hostname, Timestamp: start}

	if opts.Env {
		rep.Env = EnvSnapshot()
		printEnv(opts.Out, rep.Env)
	}

	_, vspan := tracer.Start(ctx, "probe.version")
	rep.Version = device.Version()
	vspan.End()
	fmt.Fprintln(opts.Out, rep.Version)

	_, pspan := tracer.Start(ctx, "probe.cuda")
	st := probe()
	pspan.End()
	probesTotal.Inc()

	rep.CUDAAvailable = st.Available
	rep.DeviceCount = st.Count
	rep.Devices = st.Devices
	fmt.Fprintf(opts.Out, "CUDA available: %s\n", strconv.FormatBool(st.Available))
	fmt.Fprintf(opts.Out, "CUDA device count: %d\n", st.Count)

	// Per-device detail rides with the env section so the flagless output
	// stays at exactly three query lines.
	if opts.Env {
		for _, d := range st.Devices {
			fmt.Fprintf(opts.Out, "  device %d: %s (compute %d.%d, %s free / %s total)\n",
				d.Index, d.Name, d.ComputeMajor, d.ComputeMinor,
				FormatBytes(d.FreeMemory), FormatBytes(d.TotalMemory))
		}
	}

	span.SetAttributes(
		attribute.Bool("cuda.available", st.Available),
		attribute.Int("cuda.count", st.Count),
	)

	if st.Available {
		dump, err := allocProof(ctx, opts.Seed)
		if err != nil {
			probeFailures.Inc()
			return rep, err
		}
		rep.Tensor = dump
		fmt.Fprintln(opts.Out, "Created CUDA tensor successfully!")
		fmt.Fprint(opts.Out, FormatTensor(dump.Rows, dump.Cols, dump.Values))
	}

	if opts.Stress {
		size := opts.StressSize
		if size == 0 {
			size = 256
		}
		res, err := Stress(ctx, stressBackend(st), size, opts.Seed)
		if err != nil {
			probeFailures.Inc()
			return rep, err
		}
		rep.Stress = res
		printStress(opts.Out, res)
	}

	rep.ElapsedMs = time.Since(start).Milliseconds()
	return rep, nil
}

// allocProof creates the random 2x3 tensor on the CPU, transfers it to the
// GPU backend (ownership transfer, not a view) and reads it back for
// printing. The GPU copy is dropped with the backend when we return.
func allocProof(ctx context.Context, seed int64) (*TensorDump, error) {
	_, span := tracer.Start(ctx, "tensor.alloc")
	defer span.End()

	accel, err := newAccel()
	if err != nil {
		return nil, err
	}

	cpu := device.NewCPUBackend()
	staging := device.Rand(cpu, tensorRows, tensorCols, seed)
	resident := device.Transfer(accel, staging)
	accel.Synchronize()

	return &TensorDump{
		Rows:   tensorRows,
		Cols:   tensorCols,
		Device: accel.Name(),
		Values: resident.ToHost(),
	}, nil
}

// stressBackend picks the GPU when available, otherwise falls back to CPU
// so the stress check still validates the BLAS path.
func stressBackend(st device.Status) device.Backend {
	if st.Available {
		if b, err := newAccel(); err == nil {
			return b
		}
	}
	return device.NewCPUBackend()
}
