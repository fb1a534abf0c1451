package diag

import (
	"fmt"
	"io"
	"os"
)

// envKeys are the variables the CUDA toolchain actually reads; the
// snapshot keeps their order stable for output and tests.
var envKeys = []string{
	"LD_LIBRARY_PATH",
	"CUDA_VISIBLE_DEVICES",
	"CUDA_PATH",
}

// EnvSnapshot captures the loader/runtime environment relevant to GPU
// initialization. Unset variables are reported as empty strings so the
// report always carries every key.
func EnvSnapshot() map[string]string {
	env := make(map[string]string, len(envKeys))
	for _, k := range envKeys {
		env[k] = os.Getenv(k)
	}
	return env
}

func printEnv(w io.Writer, env map[string]string) {
	fmt.Fprintln(w, "=== Environment ===")
	for _, k := range envKeys {
		v, ok := env[k]
		if !ok || v == "" {
			fmt.Fprintf(w, "%s: (unset)\n", k)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", k, v)
	}
}
