package device

import (
	"fmt"
	"runtime/debug"
)

const libVersion = "0.4.2"

// blasImpl is overridden to "netlib" by the cgo registration in blas_cgo.go.
var blasImpl = "gonum"

// Version returns the device library version line, including the gonum
// module version, the registered BLAS implementation and the CUDA runtime
// state. The result is never empty.
func Version() string {
	gonumVersion := "unknown"
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			if dep.Path == "gonum.org/v1/gonum" {
				gonumVersion = dep.Version
			}
		}
	}
	return fmt.Sprintf("scout-device %s (gonum %s, blas=%s, cuda=%s)",
		libVersion, gonumVersion, blasImpl, runtimeVersion())
}
