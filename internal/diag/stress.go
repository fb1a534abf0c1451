package diag

import (
	"context"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/23skdu/longbow-scout/internal/device"
)

// StressResult holds the statistics of one matmul stress check.
type StressResult struct {
	Backend   string  `cbor:"backend"`
	Size      int     `cbor:"size"`
	Mean      float64 `cbor:"mean"`
	Min       float64 `cbor:"min"`
	Max       float64 `cbor:"max"`
	ElapsedMs int64   `cbor:"elapsed_ms"`
	GFLOPS    float64 `cbor:"gflops"`
}

// Stress multiplies two random n x n matrices on the given backend, pulls
// the result back to the host and reports value statistics plus effective
// throughput. It is a liveness/correctness probe, not a benchmark: a single
// pass, no warmup.
func Stress(ctx context.Context, b device.Backend, n int, seed int64) (*StressResult, error) {
	_, span := tracer.Start(ctx, "stress.matmul")
	defer span.End()

	stressRuns.Inc()

	a := device.Rand(b, n, n, seed)
	m := device.Rand(b, n, n, seed+1)
	c := b.GetTensor(n, n)
	defer b.PutTensor(c)

	start := time.Now()
	c.Mul(a, m)
	b.Synchronize()
	elapsed := time.Since(start)

	host := c.ToHost()
	vals := make([]float64, len(host))
	for i, v := range host {
		vals[i] = float64(v)
	}

	res := &StressResult{
		Backend:   b.Name(),
		Size:      n,
		Mean:      stat.Mean(vals, nil),
		Min:       floats.Min(vals),
		Max:       floats.Max(vals),
		ElapsedMs: elapsed.Milliseconds(),
	}
	if s := elapsed.Seconds(); s > 0 {
		// 2*n^3 fused multiply-adds per matmul
		res.GFLOPS = 2 * float64(n) * float64(n) * float64(n) / s / 1e9
	}

	// Uniform [0,1) inputs: each output element sums n products with
	// expectation 0.25, so a wildly off mean indicates a broken kernel.
	expect := 0.25 * float64(n)
	if res.Mean < expect*0.5 || res.Mean > expect*1.5 {
		return res, fmt.Errorf("diag: stress mean %.2f outside sane range around %.2f", res.Mean, expect)
	}

	return res, nil
}

func printStress(w io.Writer, res *StressResult) {
	fmt.Fprintf(w, "Stress check (%s, %dx%d): mean=%.4f min=%.4f max=%.4f in %dms (%s)\n",
		res.Backend, res.Size, res.Size,
		res.Mean, res.Min, res.Max,
		res.ElapsedMs, formatGFLOPS(res.GFLOPS))
}
