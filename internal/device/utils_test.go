package device

import (
	"math"
	"testing"
)

func TestFloat16_Roundtrip(t *testing.T) {
	cases := []float32{0, 1.0, -2.0, 0.5, 65504, -65504, 3.14159}

	for _, v := range cases {
		h := Float32ToFloat16(v)
		back := Float16ToFloat32(h)

		// FP16 has ~3 decimal digits of precision
		tol := math.Abs(float64(v)) * 1e-3
		if tol < 1e-6 {
			tol = 1e-6
		}
		if math.Abs(float64(back-v)) > tol {
			t.Errorf("roundtrip %f -> 0x%04x -> %f", v, h, back)
		}
	}
}

func TestFloat16_KnownEncodings(t *testing.T) {
	// 1.0 in FP16 = 0x3c00, -2.0 = 0xc000
	if h := Float32ToFloat16(1.0); h != 0x3c00 {
		t.Errorf("Float32ToFloat16(1.0) = 0x%04x, want 0x3c00", h)
	}
	if h := Float32ToFloat16(-2.0); h != 0xc000 {
		t.Errorf("Float32ToFloat16(-2.0) = 0x%04x, want 0xc000", h)
	}
}

func TestFloat16_EdgeCases(t *testing.T) {
	// Overflow clamps instead of producing Inf
	if h := Float32ToFloat16(1e6); h != 0x7BFF {
		t.Errorf("overflow = 0x%04x, want max normal 0x7BFF", h)
	}

	// NaN is preserved
	nan := Float32ToFloat16(float32(math.NaN()))
	if nan != 0x7E00 {
		t.Errorf("NaN = 0x%04x, want 0x7E00", nan)
	}

	// Subnormal input flushes to signed zero
	if h := Float32ToFloat16(1e-7); h != 0x0000 {
		t.Errorf("tiny positive = 0x%04x, want 0x0000", h)
	}
	if h := Float32ToFloat16(-1e-7); h != 0x8000 {
		t.Errorf("tiny negative = 0x%04x, want 0x8000", h)
	}
}
