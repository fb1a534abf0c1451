//go:build !cuda

package device

// HasCUDA reports whether CUDA support was compiled into this binary.
// Build with -tags cuda on Linux to enable it.
const HasCUDA = false

// Count reports the number of usable CUDA devices. Always 0 without CUDA
// support compiled in.
func Count() int { return 0 }

func runtimeVersion() string { return "off" }

func deviceInfos() []Info { return nil }

// NewAccelBackend constructs the GPU backend. Without CUDA support it
// always fails; unavailable hardware is a normal outcome, not a panic.
func NewAccelBackend() (Backend, error) {
	return nil, ErrUnavailable
}

// NewAccelBackendFP16 is the half-precision variant of NewAccelBackend.
func NewAccelBackendFP16() (Backend, error) {
	return nil, ErrUnavailable
}
