package device

import (
	"math"
	"strings"
	"testing"
)

func TestCPUBackend_TensorOps(t *testing.T) {
	backend := NewCPUBackend()

	t.Run("Add", func(t *testing.T) {
		a := backend.NewTensor(2, 2, []float32{1, 2, 3, 4})
		b := backend.NewTensor(2, 2, []float32{10, 20, 30, 40})

		a.Add(b)

		expected := []float32{11, 22, 33, 44}
		data := a.ToHost()

		for i, v := range expected {
			if math.Abs(float64(data[i]-v)) > 1e-6 {
				t.Errorf("Add mismatch at %d: got %f, want %f", i, data[i], v)
			}
		}
	})

	t.Run("Mul", func(t *testing.T) {
		// A: 2x3, B: 3x2 -> C: 2x2
		a := backend.NewTensor(2, 3, []float32{
			1, 2, 3,
			4, 5, 6,
		})
		b := backend.NewTensor(3, 2, []float32{
			7, 8,
			9, 10,
			11, 12,
		})

		c := backend.NewTensor(2, 2, nil)
		c.Mul(a, b)

		// 1*7 + 2*9 + 3*11 = 58
		// 1*8 + 2*10 + 3*12 = 64
		// 4*7 + 5*9 + 6*11 = 139
		// 4*8 + 5*10 + 6*12 = 154
		expected := []float32{58, 64, 139, 154}
		data := c.ToHost()

		for i, v := range expected {
			if math.Abs(float64(data[i]-v)) > 1e-5 {
				t.Errorf("Mul mismatch at %d: got %f, want %f", i, data[i], v)
			}
		}
	})

	t.Run("MulVectorShape", func(t *testing.T) {
		// B with a single column takes the MatVec path
		a := backend.NewTensor(2, 3, []float32{
			1, 2, 3,
			4, 5, 6,
		})
		b := backend.NewTensor(3, 1, []float32{1, 2, 3})

		c := backend.NewTensor(2, 1, nil)
		c.Mul(a, b)

		data := c.ToHost()
		if data[0] != 14 || data[1] != 32 {
			t.Errorf("MatVec Mul = %v, want [14 32]", data)
		}
	})

	t.Run("Scale", func(t *testing.T) {
		a := backend.NewTensor(2, 2, []float32{1, 2, 3, 4})
		a.Scale(2.0)

		expected := []float32{2, 4, 6, 8}
		data := a.ToHost()
		for i, v := range expected {
			if data[i] != v {
				t.Errorf("Scale mismatch at %d: got %f, want %f", i, data[i], v)
			}
		}
	})

	t.Run("Pooling", func(t *testing.T) {
		t1 := backend.GetTensor(10, 10)
		t1.Set(0, 0, 123)
		backend.PutTensor(t1)

		t2 := backend.GetTensor(10, 10)
		// Should reuse t1's memory, verify it is zeroed
		if val := t2.At(0, 0); val != 0 {
			t.Errorf("Pooled tensor not zeroed: got %f", val)
		}
	})
}

func TestRand(t *testing.T) {
	backend := NewCPUBackend()
	tensor := Rand(backend, 2, 3, 42)

	r, c := tensor.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("Rand dims = %dx%d, want 2x3", r, c)
	}

	data := tensor.ToHost()
	if len(data) != 6 {
		t.Fatalf("Rand data length = %d, want 6", len(data))
	}
	for i, v := range data {
		if v < 0 || v >= 1 {
			t.Errorf("Rand value at %d out of [0,1): %f", i, v)
		}
	}

	// Same seed reproduces the same fill
	again := Rand(backend, 2, 3, 42).ToHost()
	for i := range data {
		if data[i] != again[i] {
			t.Errorf("Rand not deterministic at %d: %f vs %f", i, data[i], again[i])
		}
	}
}

func TestTransfer(t *testing.T) {
	backend := NewCPUBackend()
	src := backend.NewTensor(2, 3, []float32{1, 2, 3, 4, 5, 6})

	dst := Transfer(backend, src)

	// Full copy, not a view
	dst.Set(0, 0, 99)
	if src.At(0, 0) != 1 {
		t.Error("Transfer produced a view, want a copy")
	}

	r, c := dst.Dims()
	if r != 2 || c != 3 {
		t.Errorf("Transfer dims = %dx%d, want 2x3", r, c)
	}
}

func TestVersion(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatal("Version is empty")
	}
	if !strings.HasPrefix(v, "scout-device ") {
		t.Errorf("Version = %q, want scout-device prefix", v)
	}
	if !strings.Contains(v, "cuda=") {
		t.Errorf("Version = %q, missing cuda state", v)
	}
}
