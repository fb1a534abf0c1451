package device

import (
	"log"
	"sync"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/23skdu/longbow-scout/internal/simd"
)

// ensure interface compliance
var _ Backend = (*CPUBackend)(nil)
var _ Tensor = (*CPUTensor)(nil)

type CPUBackend struct {
	pool sync.Pool
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		pool: sync.Pool{
			New: func() interface{} {
				return &CPUTensor{}
			},
		},
	}
}

func (b *CPUBackend) Name() string {
	return "CPU"
}

func (b *CPUBackend) NewTensor(r, c int, data []float32) Tensor {
	size := r * c
	t := &CPUTensor{
		backend: b,
		rows:    r,
		cols:    c,
	}

	if data == nil {
		t.data = make([]float32, size)
	} else {
		if len(data) != size {
			panic("NewTensor: provided data length does not match dimensions")
		}
		t.data = make([]float32, size)
		copy(t.data, data)
	}

	tensorsAllocated.WithLabelValues("cpu").Inc()
	return t
}

func (b *CPUBackend) GetTensor(r, c int) Tensor {
	v := b.pool.Get()
	ct, ok := v.(*CPUTensor)
	if !ok || ct == nil {
		ct = &CPUTensor{}
	}

	ct.backend = b
	ct.rows = r
	ct.cols = c
	size := r * c
	if cap(ct.data) < size {
		poolMisses.Inc()
		ct.data = make([]float32, size)
	} else {
		poolHits.Inc()
		ct.data = ct.data[:size]
		// Zero-initialize reused memory
		for i := range ct.data {
			ct.data[i] = 0.0
		}
	}
	return ct
}

func (b *CPUBackend) PutTensor(t Tensor) {
	ct, ok := t.(*CPUTensor)
	if !ok {
		return // Don't pool foreign tensors
	}

	ct.rows = 0
	ct.cols = 0
	b.pool.Put(ct)
}

func (b *CPUBackend) Synchronize() {
	// CPU is always synchronous
}

type CPUTensor struct {
	backend *CPUBackend
	data    []float32
	rows    int
	cols    int
}

func (t *CPUTensor) Dims() (int, int) {
	return t.rows, t.cols
}

func (t *CPUTensor) At(i, j int) float32 {
	return t.data[i*t.cols+j]
}

func (t *CPUTensor) Set(i, j int, v float32) {
	t.data[i*t.cols+j] = v
}

func (t *CPUTensor) Data() []float32 {
	return t.data
}

func (t *CPUTensor) ToHost() []float32 {
	out := make([]float32, len(t.data))
	copy(out, t.data)
	return out
}

func (t *CPUTensor) CopyFromFloat32(data []float32) {
	if len(data) != len(t.data) {
		panic("CopyFromFloat32: size mismatch")
	}
	copy(t.data, data)
}

func (t *CPUTensor) Copy(from Tensor) {
	ft, ok := from.(*CPUTensor)
	if !ok {
		log.Panic("Copying between different backends not supported directly")
	}

	if t.rows != ft.rows || t.cols != ft.cols {
		log.Panicf("Copy: dimension mismatch. Target: %dx%d, Source: %dx%d", t.rows, t.cols, ft.rows, ft.cols)
	}
	copy(t.data, ft.data)
}

func (t *CPUTensor) Mul(a, b Tensor) {
	ma, ok1 := a.(*CPUTensor)
	mb, ok2 := b.(*CPUTensor)

	if !ok1 || !ok2 {
		log.Panic("Mixed backend Mul not supported")
	}

	if ma.cols != mb.rows {
		log.Panicf("Mul: dimension mismatch. A cols (%d) != B rows (%d)", ma.cols, mb.rows)
	}
	if t.rows != ma.rows || t.cols != mb.cols {
		log.Panicf("Mul: result tensor dimension mismatch. Expected %dx%d, got %dx%d", ma.rows, mb.cols, t.rows, t.cols)
	}

	if mb.cols == 1 {
		// Matrix-vector shape, the unrolled kernel beats GEMM setup cost
		simd.MatVecMul(t.data, ma.data, mb.data, ma.rows, ma.cols)
		return
	}

	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: ma.rows, Cols: ma.cols, Stride: ma.cols, Data: ma.data},
		blas32.General{Rows: mb.rows, Cols: mb.cols, Stride: mb.cols, Data: mb.data},
		0,
		blas32.General{Rows: t.rows, Cols: t.cols, Stride: t.cols, Data: t.data})
}

func (t *CPUTensor) Add(other Tensor) {
	ot, ok := other.(*CPUTensor)
	if !ok {
		log.Panic("Mixed backend Add not supported")
	}

	if t.rows != ot.rows || t.cols != ot.cols {
		log.Panicf("Add: dimension mismatch. Target: %dx%d, Other: %dx%d", t.rows, t.cols, ot.rows, ot.cols)
	}
	simd.VecAdd(t.data, ot.data)
}

func (t *CPUTensor) Scale(val float32) {
	for i := range t.data {
		t.data[i] *= val
	}
}
