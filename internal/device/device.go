package device

import (
	"errors"
	"math/rand"
)

// ErrUnavailable is returned when no GPU backend can be constructed in the
// current build/environment.
var ErrUnavailable = errors.New("device: CUDA backend unavailable")

// Tensor represents a 2-D float32 buffer that can be resident on different
// devices (CPU, CUDA GPU).
type Tensor interface {
	// Dims returns the dimensions (rows, cols) of the tensor.
	Dims() (int, int)

	// At returns the value at (i, j).
	// This is often slow on GPU and should be used for debugging or
	// infrequent access.
	At(i, j int) float32

	// Set sets the value at (i, j).
	Set(i, j int, v float32)

	// Data returns the underlying slice if available on CPU (nil if on GPU).
	Data() []float32

	// ToHost copies the data to a Go slice (float32).
	ToHost() []float32

	// CopyFromFloat32 copies data from a Go slice (float32) to the tensor.
	CopyFromFloat32(data []float32)

	// Copy copies content from another tensor on the same backend.
	Copy(from Tensor)

	// Mul performs matrix multiplication.
	// Convention: t.Mul(a, b) means t = a * b
	Mul(a, b Tensor)

	// Add performs element-wise addition: t = t + other
	Add(other Tensor)

	// Scale performs: t = t * val
	Scale(val float32)
}

// Backend creates tensors and manages device memory.
type Backend interface {
	Name() string
	NewTensor(r, c int, data []float32) Tensor

	// GetTensor gets a tensor from the pool or creates a new one.
	GetTensor(r, c int) Tensor

	// PutTensor returns a tensor to the pool.
	PutTensor(t Tensor)

	// Synchronize blocks until all queued operations are complete.
	Synchronize()
}

// Info describes a single GPU device as reported by the runtime.
type Info struct {
	Index        int
	Name         string
	TotalMemory  int64
	FreeMemory   int64
	ComputeMajor int
	ComputeMinor int
}

// Status is a point-in-time snapshot of GPU support.
// Invariant: Count is 0 whenever Available is false, and len(Devices)
// always equals Count.
type Status struct {
	Available      bool
	Count          int
	RuntimeVersion string
	Devices        []Info
}

// Probe queries the runtime for GPU availability, device count and
// per-device properties. It never fails: a missing or broken runtime
// reports as unavailable.
func Probe() Status {
	n := Count()
	return Status{
		Available:      n > 0,
		Count:          n,
		RuntimeVersion: runtimeVersion(),
		Devices:        deviceInfos(),
	}
}

// Rand allocates an r x c tensor on backend b filled with uniform random
// values in [0, 1).
func Rand(b Backend, r, c int, seed int64) Tensor {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, r*c)
	for i := range data {
		data[i] = rng.Float32()
	}
	return b.NewTensor(r, c, data)
}

// Transfer places a copy of src on backend dst. The result is a full copy
// owned by dst, never a view; src is left intact.
func Transfer(dst Backend, src Tensor) Tensor {
	r, c := src.Dims()
	return dst.NewTensor(r, c, src.ToHost())
}
