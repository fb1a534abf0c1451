package simd

import (
	"testing"
)

func TestVecAdd(t *testing.T) {
	dst := []float32{1, 2, 3, 4, 5}
	src := []float32{10, 20, 30, 40, 50}
	expected := []float32{11, 22, 33, 44, 55}

	VecAdd(dst, src)

	for i, v := range dst {
		if v != expected[i] {
			t.Errorf("VecAdd(%d) = %f, want %f", i, v, expected[i])
		}
	}
}

func TestVecAddScaled(t *testing.T) {
	dst := []float32{1, 2, 3, 4, 5}
	src := []float32{10, 20, 30, 40, 50}
	expected := []float32{6, 12, 18, 24, 30}

	VecAddScaled(dst, src, 0.5)

	for i, v := range dst {
		if v != expected[i] {
			t.Errorf("VecAddScaled(%d) = %f, want %f", i, v, expected[i])
		}
	}
}

func TestDotProduct(t *testing.T) {
	a := []float32{1, 2, 3, 4, 5}
	b := []float32{2, 3, 4, 5, 6}
	// 2 + 6 + 12 + 20 + 30 = 70
	var expected float32 = 70.0

	result := DotProduct(a, b)

	if result != expected {
		t.Errorf("DotProduct = %f, want %f", result, expected)
	}
}

func TestMatVecMul(t *testing.T) {
	// 2x3 matrix
	mat := []float32{
		1, 2, 3,
		4, 5, 6,
	}
	vec := []float32{1, 2, 3}
	dst := make([]float32, 2)

	// Row 0: 1*1 + 2*2 + 3*3 = 14
	// Row 1: 4*1 + 5*2 + 6*3 = 32
	MatVecMul(dst, mat, vec, 2, 3)

	if dst[0] != 14 || dst[1] != 32 {
		t.Errorf("MatVecMul = %v, want [14 32]", dst)
	}
}
