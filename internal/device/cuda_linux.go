//go:build linux && cuda

package device

/*
#cgo LDFLAGS: -lcudart -lcublas
#include <cuda_runtime.h>
#include <cublas_v2.h>
#include <string.h>

static int scout_device_count() {
	int n = 0;
	if (cudaGetDeviceCount(&n) != cudaSuccess) return 0;
	return n;
}

static int scout_runtime_version() {
	int v = 0;
	if (cudaRuntimeGetVersion(&v) != cudaSuccess) return 0;
	return v;
}

typedef struct {
	char   name[256];
	size_t total_mem;
	size_t free_mem;
	int    major;
	int    minor;
} scout_dev_props;

static int scout_device_props(int idx, scout_dev_props* out) {
	struct cudaDeviceProp prop;
	if (cudaGetDeviceProperties(&prop, idx) != cudaSuccess) return -1;
	strncpy(out->name, prop.name, 255);
	out->name[255] = 0;
	out->total_mem = prop.totalGlobalMem;
	out->major = prop.major;
	out->minor = prop.minor;
	size_t free_b = 0, total_b = 0;
	out->free_mem = 0;
	if (cudaSetDevice(idx) == cudaSuccess && cudaMemGetInfo(&free_b, &total_b) == cudaSuccess) {
		out->free_mem = free_b;
	}
	return 0;
}

static cublasHandle_t scout_cublas_init() {
	cublasHandle_t h;
	if (cublasCreate(&h) != CUBLAS_STATUS_SUCCESS) return NULL;
	return h;
}
*/
import "C"
import (
	"fmt"
	"runtime"
	"unsafe"
)

// Check interface compliance
var _ Backend = (*CudaBackend)(nil)
var _ Tensor = (*CudaTensor)(nil)

// HasCUDA reports whether CUDA support was compiled into this binary.
const HasCUDA = true

// Count reports the number of usable CUDA devices.
func Count() int {
	return int(C.scout_device_count())
}

func runtimeVersion() string {
	v := int(C.scout_runtime_version())
	if v == 0 {
		return "on"
	}
	// cudaRuntimeGetVersion encodes 12.4 as 12040
	return fmt.Sprintf("%d.%d", v/1000, (v%1000)/10)
}

func deviceInfos() []Info {
	n := Count()
	infos := make([]Info, 0, n)
	for i := 0; i < n; i++ {
		var props C.scout_dev_props
		if C.scout_device_props(C.int(i), &props) != 0 {
			continue
		}
		infos = append(infos, Info{
			Index:        i,
			Name:         C.GoString(&props.name[0]),
			TotalMemory:  int64(props.total_mem),
			FreeMemory:   int64(props.free_mem),
			ComputeMajor: int(props.major),
			ComputeMinor: int(props.minor),
		})
	}
	return infos
}

type CudaBackend struct {
	handle  C.cublasHandle_t
	useFP16 bool
}

// NewAccelBackend initializes the CUDA backend on device 0.
func NewAccelBackend() (Backend, error) {
	return newCudaBackend(false)
}

// NewAccelBackendFP16 initializes the CUDA backend with FP16 tensor storage.
func NewAccelBackendFP16() (Backend, error) {
	return newCudaBackend(true)
}

func newCudaBackend(fp16 bool) (Backend, error) {
	if Count() == 0 {
		return nil, ErrUnavailable
	}
	handle := C.scout_cublas_init()
	if handle == nil {
		return nil, fmt.Errorf("device: cublasCreate failed")
	}
	return &CudaBackend{handle: handle, useFP16: fp16}, nil
}

func (b *CudaBackend) Name() string {
	if b.useFP16 {
		return "CUDA-FP16"
	}
	return "CUDA"
}

func (b *CudaBackend) NewTensor(r, c int, data []float32) Tensor {
	t := b.GetTensor(r, c)
	if data != nil {
		t.CopyFromFloat32(data)
	}
	return t
}

func (b *CudaBackend) GetTensor(r, c int) Tensor {
	size := r * c
	var sizeBytes int
	if b.useFP16 {
		sizeBytes = size * 2
	} else {
		sizeBytes = size * 4
	}

	var buf unsafe.Pointer
	if C.cudaMalloc(&buf, C.size_t(sizeBytes)) != C.cudaSuccess {
		panic("device: cudaMalloc failed")
	}
	tensorsAllocated.WithLabelValues("cuda").Inc()

	t := &CudaTensor{
		backend:   b,
		buf:       buf,
		rows:      r,
		cols:      c,
		sizeBytes: sizeBytes,
	}

	runtime.SetFinalizer(t, func(t *CudaTensor) {
		C.cudaFree(t.buf)
	})

	return t
}

func (b *CudaBackend) PutTensor(t Tensor) {
	// Freed by the finalizer; a device-side pool can come later if the
	// diagnostic ever allocates in a loop.
}

func (b *CudaBackend) Synchronize() {
	C.cudaDeviceSynchronize()
}

type CudaTensor struct {
	backend   *CudaBackend
	buf       unsafe.Pointer
	rows      int
	cols      int
	sizeBytes int
}

func (t *CudaTensor) Dims() (int, int) {
	return t.rows, t.cols
}

func (t *CudaTensor) At(i, j int) float32 {
	// Slow path for debugging
	if t.backend.useFP16 {
		var h uint16
		off := uintptr((i*t.cols + j) * 2)
		C.cudaMemcpy(unsafe.Pointer(&h), unsafe.Add(t.buf, off), 2, C.cudaMemcpyDeviceToHost)
		return Float16ToFloat32(h)
	}
	var val float32
	off := uintptr((i*t.cols + j) * 4)
	C.cudaMemcpy(unsafe.Pointer(&val), unsafe.Add(t.buf, off), 4, C.cudaMemcpyDeviceToHost)
	return val
}

func (t *CudaTensor) Set(i, j int, v float32) {
	if t.backend.useFP16 {
		h := Float32ToFloat16(v)
		off := uintptr((i*t.cols + j) * 2)
		C.cudaMemcpy(unsafe.Add(t.buf, off), unsafe.Pointer(&h), 2, C.cudaMemcpyHostToDevice)
	} else {
		off := uintptr((i*t.cols + j) * 4)
		C.cudaMemcpy(unsafe.Add(t.buf, off), unsafe.Pointer(&v), 4, C.cudaMemcpyHostToDevice)
	}
}

func (t *CudaTensor) Data() []float32 {
	return nil // Resident on GPU
}

func (t *CudaTensor) ToHost() []float32 {
	size := t.rows * t.cols

	if t.backend.useFP16 {
		raw16 := make([]uint16, size)
		C.cudaMemcpy(unsafe.Pointer(&raw16[0]), t.buf, C.size_t(t.sizeBytes), C.cudaMemcpyDeviceToHost)

		data := make([]float32, size)
		for i, h := range raw16 {
			data[i] = Float16ToFloat32(h)
		}
		return data
	}

	data := make([]float32, size)
	C.cudaMemcpy(unsafe.Pointer(&data[0]), t.buf, C.size_t(t.sizeBytes), C.cudaMemcpyDeviceToHost)
	return data
}

func (t *CudaTensor) CopyFromFloat32(data []float32) {
	if t.backend.useFP16 {
		f16 := make([]uint16, len(data))
		for i, v := range data {
			f16[i] = Float32ToFloat16(v)
		}
		C.cudaMemcpy(t.buf, unsafe.Pointer(&f16[0]), C.size_t(t.sizeBytes), C.cudaMemcpyHostToDevice)
	} else {
		C.cudaMemcpy(t.buf, unsafe.Pointer(&data[0]), C.size_t(t.sizeBytes), C.cudaMemcpyHostToDevice)
	}
}

func (t *CudaTensor) Copy(from Tensor) {
	ft, ok := from.(*CudaTensor)
	if !ok {
		panic("device: copying between different backends not supported directly")
	}
	C.cudaMemcpy(t.buf, ft.buf, C.size_t(t.sizeBytes), C.cudaMemcpyDeviceToDevice)
}

// Mul performs t = a * b via cublasSgemm. FP16 tensors take the host
// round-trip path; cublasGemmEx can replace it if the stress check ever
// needs device-side half precision.
func (t *CudaTensor) Mul(a, b Tensor) {
	at, ok1 := a.(*CudaTensor)
	bt, ok2 := b.(*CudaTensor)
	if !ok1 || !ok2 {
		panic("device: mixed backend Mul not supported")
	}
	if at.cols != bt.rows {
		panic(fmt.Sprintf("device: Mul dimension mismatch. A cols (%d) != B rows (%d)", at.cols, bt.rows))
	}

	if t.backend.useFP16 {
		cpu := NewCPUBackend()
		ha := cpu.NewTensor(at.rows, at.cols, at.ToHost())
		hb := cpu.NewTensor(bt.rows, bt.cols, bt.ToHost())
		hc := cpu.NewTensor(t.rows, t.cols, nil)
		hc.Mul(ha, hb)
		t.CopyFromFloat32(hc.ToHost())
		return
	}

	m := at.rows
	k := at.cols
	n := bt.cols
	alpha := C.float(1.0)
	beta := C.float(0.0)

	// Row-major C = A*B expressed as column-major C^T = B^T * A^T.
	st := C.cublasSgemm(t.backend.handle,
		C.CUBLAS_OP_N, C.CUBLAS_OP_N,
		C.int(n), C.int(m), C.int(k),
		&alpha,
		(*C.float)(bt.buf), C.int(n),
		(*C.float)(at.buf), C.int(k),
		&beta,
		(*C.float)(t.buf), C.int(n))
	if st != C.CUBLAS_STATUS_SUCCESS {
		panic("device: cublasSgemm failed")
	}
}

func (t *CudaTensor) Add(other Tensor) {
	ot, ok := other.(*CudaTensor)
	if !ok {
		panic("device: mixed backend Add not supported")
	}
	if t.backend.useFP16 {
		data := t.ToHost()
		od := ot.ToHost()
		for i := range data {
			data[i] += od[i]
		}
		t.CopyFromFloat32(data)
		return
	}
	alpha := C.float(1.0)
	n := C.int(t.rows * t.cols)
	if C.cublasSaxpy(t.backend.handle, n, &alpha, (*C.float)(ot.buf), 1, (*C.float)(t.buf), 1) != C.CUBLAS_STATUS_SUCCESS {
		panic("device: cublasSaxpy failed")
	}
}

func (t *CudaTensor) Scale(val float32) {
	if t.backend.useFP16 {
		data := t.ToHost()
		for i := range data {
			data[i] *= val
		}
		t.CopyFromFloat32(data)
		return
	}
	alpha := C.float(val)
	n := C.int(t.rows * t.cols)
	if C.cublasSscal(t.backend.handle, n, &alpha, (*C.float)(t.buf), 1) != C.CUBLAS_STATUS_SUCCESS {
		panic("device: cublasSscal failed")
	}
}
